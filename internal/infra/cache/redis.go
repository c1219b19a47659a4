package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/knights/internal/domain"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache stores snapshots with the given ttl. Zero keeps them until overwritten.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.NotFoundError{Resource: "snapshot"}
		}
		return "", errors.Wrap(err, "RedisCache.Get")
	}
	return value, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value string) error {
	err := c.rdb.Set(ctx, key, value, c.ttl).Err()
	if err != nil {
		return errors.Wrap(err, "RedisCache.Set")
	}
	return nil
}
