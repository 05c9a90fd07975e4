package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores entries in redis with SET PX; redis enforces expiry.
type RedisBackend struct {
	rc *redis.Client
}

// NewRedisBackend wraps rc.
func NewRedisBackend(rc *redis.Client) *RedisBackend {
	return &RedisBackend{rc: rc}
}

// Get returns the value under key, if present.
func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rc.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set stores value under key for window.
func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, window time.Duration) error {
	return r.rc.Set(ctx, key, value, window).Err()
}

// Delete drops key.
func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.rc.Del(ctx, key).Err()
}

// DeletePrefix deletes keys that match the given prefix using SCAN.
func (r *RedisBackend) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := r.rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			pipe := r.rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
