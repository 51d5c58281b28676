package clientid

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	gferrors "github.com/vnykmshr/gatrack/pkg/common/errors"
	"github.com/vnykmshr/gatrack/pkg/common/validation"
)

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "gatrack:cid"

// RedisStore shares one id between processes of the same installation.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedisStore returns a store keeping the id under key. A zero ttl keeps
// the id forever.
func NewRedisStore(client redis.UniversalClient, key string, ttl time.Duration) (*RedisStore, error) {
	if err := validation.ValidateNotNil("clientid", "redis", client); err != nil {
		return nil, err
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, ttl: ttl}, nil
}

func (r *RedisStore) Load(ctx context.Context) (string, error) {
	id, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", gferrors.NewOperationError("clientid", "Load", err).WithContext("key=" + r.key)
	}
	return id, nil
}

func (r *RedisStore) Save(ctx context.Context, id string) error {
	if err := r.client.Set(ctx, r.key, id, r.ttl).Err(); err != nil {
		return gferrors.NewOperationError("clientid", "Save", err).WithContext("key=" + r.key)
	}
	return nil
}
