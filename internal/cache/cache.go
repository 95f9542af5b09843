// Package cache implements a cache-aside accessor over Redis.
//
// The cache is strictly an expendable projection of the relational store:
// every store failure is logged and recovered by falling through to the
// source-of-truth computation, never surfaced to callers.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client with get-or-compute semantics.
type Cache struct {
	client *redis.Client

	// OnHit and OnMiss, when set, observe cache outcomes per key. Used to
	// feed metrics without the cache knowing about the metrics registry.
	OnHit  func(key string)
	OnMiss func(key string)
}

// New creates a cache accessor around an existing Redis client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) hit(key string) {
	if c.OnHit != nil {
		c.OnHit(key)
	}
}

func (c *Cache) miss(key string) {
	if c.OnMiss != nil {
		c.OnMiss(key)
	}
}

// Ping checks connectivity to the cache store.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetOrCompute returns the cached value under key, or invokes compute,
// stores its result with the given TTL, and returns it. A cache failure
// on either the read or the write path never fails the call; the freshly
// computed value is still returned.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached T
		if unmarshalErr := json.Unmarshal(raw, &cached); unmarshalErr == nil {
			c.hit(key)
			return cached, nil
		}
		// A corrupt entry is treated as a miss and overwritten below.
		slog.Warn("cache entry corrupt, recomputing", "key", key)
	} else if err != redis.Nil {
		slog.Error("cache read failed", "key", key, "error", err)
	}
	c.miss(key)

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}

	if encoded, err := json.Marshal(value); err != nil {
		slog.Error("cache encode failed", "key", key, "error", err)
	} else if setErr := c.client.Set(ctx, key, encoded, ttl).Err(); setErr != nil {
		slog.Error("cache write failed", "key", key, "error", setErr)
	}

	return value, nil
}

// Invalidate deletes one exact key, or every key matching a wildcard
// pattern. Zero matches is a no-op, not an error.
func (c *Cache) Invalidate(ctx context.Context, keyOrPattern string) {
	if !isPattern(keyOrPattern) {
		if err := c.client.Del(ctx, keyOrPattern).Err(); err != nil {
			slog.Error("cache delete failed", "key", keyOrPattern, "error", err)
		}
		return
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyOrPattern, 100).Result()
		if err != nil {
			slog.Error("cache scan failed", "pattern", keyOrPattern, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Error("cache delete failed", "pattern", keyOrPattern, "error", err)
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// InvalidateAll deletes every key matching each of the given patterns.
func (c *Cache) InvalidateAll(ctx context.Context, patterns ...string) {
	for _, p := range patterns {
		c.Invalidate(ctx, p)
	}
}

func isPattern(key string) bool {
	for _, r := range key {
		if r == '*' || r == '?' || r == '[' {
			return true
		}
	}
	return false
}
