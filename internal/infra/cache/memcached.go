package cache

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"

	"github.com/totegamma/knights/internal/domain"
)

// memcached reads expirations above this as absolute unix times
const maxRelativeExpiration = 30 * 24 * time.Hour

type MemcachedCache struct {
	mc  *memcache.Client
	ttl time.Duration
}

func NewMemcachedCache(mc *memcache.Client, ttl time.Duration) *MemcachedCache {
	return &MemcachedCache{mc: mc, ttl: ttl}
}

// memcache.Client takes no context; a cancelled request is checked up front.
func (c *MemcachedCache) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	item, err := c.mc.Get(key)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return "", domain.NotFoundError{Resource: "snapshot"}
		}
		return "", errors.Wrap(err, "MemcachedCache.Get")
	}
	return string(item.Value), nil
}

func (c *MemcachedCache) Set(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.mc.Set(&memcache.Item{
		Key:        key,
		Value:      []byte(value),
		Expiration: expiration(c.ttl, time.Now()),
	})
	if err != nil {
		return errors.Wrap(err, "MemcachedCache.Set")
	}
	return nil
}

func expiration(ttl time.Duration, now time.Time) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl > maxRelativeExpiration {
		return int32(now.Add(ttl).Unix())
	}
	return int32(ttl / time.Second)
}
