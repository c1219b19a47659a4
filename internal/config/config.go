package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-yaml/yaml"
)

const (
	CacheBackendRedis     = "redis"
	CacheBackendMemcached = "memcached"
	CacheBackendMemory    = "memory"
)

// Config is read from a YAML file and then overridden by KNIGHTS_* environment variables.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Cache    Cache    `yaml:"cache"`
	Trace    Trace    `yaml:"trace"`
}

type Server struct {
	Addr     string `yaml:"addr" env:"KNIGHTS_ADDR"`
	LogLevel string `yaml:"logLevel" env:"KNIGHTS_LOG_LEVEL"` // debug, info, warn, error
}

type Database struct {
	PostgresDsn string `yaml:"postgresDsn" env:"KNIGHTS_POSTGRES_DSN"`
}

type Cache struct {
	Backend       string `yaml:"backend" env:"KNIGHTS_CACHE_BACKEND"` // redis, memcached, memory
	RedisAddr     string `yaml:"redisAddr" env:"KNIGHTS_REDIS_ADDR"`
	RedisPassword string `yaml:"redisPassword" env:"KNIGHTS_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redisDB" env:"KNIGHTS_REDIS_DB"`
	MemcachedAddr string `yaml:"memcachedAddr" env:"KNIGHTS_MEMCACHED_ADDR"`
	TTLSeconds    int    `yaml:"ttlSeconds" env:"KNIGHTS_CACHE_TTL_SECONDS"` // 0 keeps the snapshot until overwritten
}

type Trace struct {
	Enable      bool   `yaml:"enable" env:"KNIGHTS_TRACE_ENABLE"`
	Endpoint    string `yaml:"endpoint" env:"KNIGHTS_TRACE_ENDPOINT"`
	ServiceName string `yaml:"serviceName" env:"KNIGHTS_TRACE_SERVICE_NAME"`
}

func defaults() Config {
	return Config{
		Server: Server{
			Addr:     ":3030",
			LogLevel: "info",
		},
		Cache: Cache{
			Backend: CacheBackendMemory,
		},
		Trace: Trace{
			ServiceName: "knights",
		},
	}
}

// Load reads path (skipped when empty), applies the environment and validates the result.
func Load(path string) (Config, error) {
	config := defaults()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer file.Close()

		err = yaml.NewDecoder(file).Decode(&config)
		if err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) Validate() error {
	if c.Database.PostgresDsn == "" {
		return fmt.Errorf("database.postgresDsn is required")
	}

	switch strings.ToLower(c.Cache.Backend) {
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redisAddr is required for the redis backend")
		}
	case CacheBackendMemcached:
		if c.Cache.MemcachedAddr == "" {
			return fmt.Errorf("cache.memcachedAddr is required for the memcached backend")
		}
	case CacheBackendMemory:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttlSeconds must not be negative")
	}

	if c.Trace.Enable && c.Trace.Endpoint == "" {
		return fmt.Errorf("trace.endpoint is required when tracing is enabled")
	}

	return nil
}
