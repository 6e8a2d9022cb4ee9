package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"route-optimizer-service/internal/ports"
)

// RedisRouteCache is a Redis-backed cache for provider route responses.
// Entries expire so stale road data ages out on its own.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{
		client: client,
		ttl:    ttl,
		prefix: "routecache:",
	}
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (ports.RouteResult, bool, error) {
	if key == "" {
		return ports.RouteResult{}, false, errors.New("route cache: key must not be empty")
	}

	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.RouteResult{}, false, nil
	}
	if err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("route cache get: %w", err)
	}

	var result ports.RouteResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// A corrupt entry is treated as a miss so the caller refetches.
		return ports.RouteResult{}, false, nil
	}

	return result, true, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, key string, result ports.RouteResult) error {
	if key == "" {
		return errors.New("route cache: key must not be empty")
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("route cache put: marshal: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("route cache put: %w", err)
	}

	return nil
}
