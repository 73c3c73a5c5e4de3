package namecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by redis keys with a native expiry, shared by every
// process pointed at the same server.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedis creates a redis-backed cache. A non-positive ttl uses DefaultTTL.
func NewRedis(client redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(key string) string {
	return r.prefix + "name:" + key
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	name, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get name: %w", err)
	}
	return name, true, nil
}

func (r *Redis) Set(ctx context.Context, key, name string) error {
	if err := r.client.Set(ctx, r.key(key), name, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set name: %w", err)
	}
	return nil
}
