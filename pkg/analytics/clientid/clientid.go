// Package clientid persists the anonymous client id reported with every
// analytics hit, so one installation keeps the same id across restarts.
package clientid

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Store.Load when no id has been saved yet.
var ErrNotFound = errors.New("clientid: not found")

// Store loads and saves a client id.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, id string) error
}

// Resolve returns the stored client id. When none is stored it adopts
// deviceID, or a new random UUID when deviceID is empty, and saves it.
func Resolve(ctx context.Context, store Store, deviceID string) (string, error) {
	id, err := store.Load(ctx)
	switch {
	case err == nil && id != "":
		return id, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return "", err
	}

	id = strings.TrimSpace(deviceID)
	if id == "" {
		id = uuid.NewString()
	}
	if err := store.Save(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}
