package providers

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/totegamma/knights/internal/config"
	"github.com/totegamma/knights/internal/infra/cache"
	"github.com/totegamma/knights/internal/infra/database"
	"github.com/totegamma/knights/internal/infra/repository"
	"github.com/totegamma/knights/internal/usecase"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Database) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

func NewKnightRepository(db *gorm.DB) *repository.KnightRepository {
	return repository.NewKnightRepository(db)
}

// NewSnapshotCache picks the hero snapshot backend named in the config.
func NewSnapshotCache(conf config.Cache) (usecase.SnapshotCache, error) {
	ttl := time.Duration(conf.TTLSeconds) * time.Second

	switch strings.ToLower(conf.Backend) {
	case config.CacheBackendRedis:
		rdb := database.NewRedis(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
		return cache.NewRedisCache(rdb, ttl), nil
	case config.CacheBackendMemcached:
		return cache.NewMemcachedCache(database.NewMemcached(conf.MemcachedAddr), ttl), nil
	case config.CacheBackendMemory, "":
		return cache.NewMemoryCache(ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", conf.Backend)
	}
}
