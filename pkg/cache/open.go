package cache

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// Backend names a cache implementation.
type Backend string

// Backends.
const (
	BackendFile   Backend = "file"
	BackendBadger Backend = "badger"
	BackendRedis  Backend = "redis"
	BackendNone   Backend = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend  Backend
	Dir      string // file and badger
	RedisURL string
	Logger   *log.Logger
}

// Open returns the configured cache. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileCache(cfg.Dir)
	case BackendBadger:
		return NewBadgerCache(cfg.Dir, cfg.Logger)
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis cache needs a url")
		}
		return NewRedisCache(ctx, cfg.RedisURL)
	case BackendNone:
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q (must be one of: file, badger, redis, none)", cfg.Backend)
}
