// Package localstore provides the client-side key/value stores behind
// domain.LocalStore: the offline question backups, the sync queue and the
// search history all live here.
package localstore

import (
	"context"
	"fmt"

	"questa-search/internal/cache"
	"questa-search/internal/config"
	"questa-search/internal/domain"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Store is a LocalStore that holds resources until closed.
type Store interface {
	domain.LocalStore
	Close() error
}

// Open returns the backend named in cfg.
func Open(ctx context.Context, cfg config.LocalStoreConfig, redisCfg config.RedisConfig) (Store, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		return NewSQLiteStore(ctx, cfg.Path)
	case BackendRedis:
		client, err := cache.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.RedisPrefix), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown local store backend %q", cfg.Backend)
	}
}
