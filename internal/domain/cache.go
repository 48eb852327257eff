package domain

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Cache and LocalStore lookups for absent keys.
var ErrCacheMiss = errors.New("key not found")

// Cache holds serialized search pages and questions on the server side.
type Cache interface {
	// Get returns ErrCacheMiss when key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value for ttl; a zero ttl never expires.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr bumps a counter, treating a missing key as 0.
	Incr(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
}

// LocalStore is a string key/value store with the semantics of browser localStorage.
// It backs the offline fallback corpus, the sync queue and the search history.
type LocalStore interface {
	// GetItem returns ErrCacheMiss when key is absent.
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
