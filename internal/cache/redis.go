package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"questa-search/internal/config"

	"github.com/redis/go-redis/v9"
)

const dialTimeout = 3 * time.Second

// NewRedisClient connects to the Redis used for search caching or as a
// local store. The connection is verified before returning.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis.address is not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis at %s unreachable: %w", cfg.Address, err)
	}
	return client, nil
}
