package cache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/totegamma/knights/internal/domain"
)

// MemoryCache keeps snapshots in process. It is lost on restart and is not
// shared between replicas.
type MemoryCache struct {
	cache *cache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	defaultTTL := cache.NoExpiration
	if ttl > 0 {
		defaultTTL = ttl
	}
	return &MemoryCache{
		cache: cache.New(defaultTTL, 15*time.Minute),
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	cached, found := c.cache.Get(key)
	if !found {
		return "", domain.NotFoundError{Resource: "snapshot"}
	}
	return cached.(string), nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value string) error {
	c.cache.Set(key, value, cache.DefaultExpiration)
	return nil
}
