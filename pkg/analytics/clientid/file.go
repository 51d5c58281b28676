package clientid

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/vnykmshr/gatrack/pkg/common/errors"
	"github.com/vnykmshr/gatrack/pkg/common/validation"
)

// FileStore keeps the id in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file and its directory
// are created on the first Save.
func NewFileStore(path string) (*FileStore, error) {
	if err := validation.ValidateNotEmpty("clientid", "path", path); err != nil {
		return nil, err
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.NewOperationError("clientid", "Load", err).WithContext(f.path)
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", ErrNotFound
	}
	return id, nil
}

// Save writes the id through a temporary file so a crash never leaves a
// truncated id behind.
func (f *FileStore) Save(_ context.Context, id string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.NewOperationError("clientid", "Save", err).WithContext(f.path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".cid-*")
	if err != nil {
		return errors.NewOperationError("clientid", "Save", err).WithContext(f.path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(id + "\n"); err != nil {
		tmp.Close()
		return errors.NewOperationError("clientid", "Save", err).WithContext(f.path)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewOperationError("clientid", "Save", err).WithContext(f.path)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.NewOperationError("clientid", "Save", err).WithContext(f.path)
	}
	return nil
}
