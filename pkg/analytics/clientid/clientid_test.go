package clientid

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gferrors "github.com/vnykmshr/gatrack/pkg/common/errors"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisStore(client, "", ttl)
	require.NoError(t, err)
	return store, mr
}

func stores(t *testing.T) map[string]Store {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "cid"))
	require.NoError(t, err)
	rs, _ := newRedisStore(t, 0)

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
		"redis":  rs,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Load(ctx)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Save(ctx, "abc-123"))
			id, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, "abc-123", id)
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("generates a v4 uuid", func(t *testing.T) {
		store := NewMemoryStore()
		id, err := Resolve(ctx, store, "")
		require.NoError(t, err)

		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())

		again, err := Resolve(ctx, store, "")
		require.NoError(t, err)
		assert.Equal(t, id, again, "resolved id must be stable")
	})

	t.Run("prefers device id", func(t *testing.T) {
		store := NewMemoryStore()
		id, err := Resolve(ctx, store, " device-42 ")
		require.NoError(t, err)
		assert.Equal(t, "device-42", id)

		stored, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "device-42", stored)
	})

	t.Run("stored id wins over device id", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, "existing"))
		id, err := Resolve(ctx, store, "device-42")
		require.NoError(t, err)
		assert.Equal(t, "existing", id)
	})

	t.Run("load failure is returned", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Resolve(ctx, failingStore{err: boom}, "device")
		assert.ErrorIs(t, err, boom)
	})
}

type failingStore struct{ err error }

func (f failingStore) Load(context.Context) (string, error) { return "", f.err }
func (f failingStore) Save(context.Context, string) error   { return f.err }

func TestFileStore(t *testing.T) {
	_, err := NewFileStore("")
	assert.True(t, gferrors.IsValidationError(err))

	path := filepath.Join(t.TempDir(), "cid")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound, "blank file counts as missing")

	require.NoError(t, store.Save(context.Background(), "id-1"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id-1\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestRedisStore(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "shared"))
	got, err := mr.Get(DefaultRedisKey)
	require.NoError(t, err)
	assert.Equal(t, "shared", got)
	assert.Equal(t, time.Hour, mr.TTL(DefaultRedisKey))

	mr.FastForward(2 * time.Hour)
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewRedisStore(nil, "k", 0)
	assert.True(t, gferrors.IsValidationError(err))

	down, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: down.Addr(), MaxRetries: -1})
	defer client.Close()
	down.Close()

	broken, err := NewRedisStore(client, "k", 0)
	require.NoError(t, err)
	_, err = broken.Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
