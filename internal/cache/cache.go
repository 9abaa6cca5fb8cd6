// Package cache wraps Redis behind a small typed helper. Keys are
// namespaced per entity (job:<id>, payment:<id>) and writes to an entity
// must invalidate its key.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a JSON-over-Redis cache with a single default TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects and pings so a bad address fails at startup,
// not on the first request.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}

	return client, nil
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// JobKey builds the cache key for a job record.
func JobKey(id fmt.Stringer) string { return "job:" + id.String() }

// PaymentKey builds the cache key for a payment record.
func PaymentKey(id fmt.Stringer) string { return "payment:" + id.String() }

// Get loads and unmarshals a cached value into dest. The second return is
// false on a miss or an unreadable entry.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// A stale or corrupted entry is treated as a miss.
		return false, nil
	}
	return true, nil
}

// Set marshals and stores a value under the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Invalidate drops one or more keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	return nil
}
