// Package cache owns the Redis client behind catalog search and report
// caching.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// New dials Redis at addr and verifies it answers. Callers treat a nil
// client as caching switched off, so a failure here degrades rather than
// aborts startup.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", addr, err)
	}

	return client, nil
}
