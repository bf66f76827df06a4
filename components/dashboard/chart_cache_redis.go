package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const redisChartPrefix = "dashboard:chart:"

// RedisRenderCache shares rendered charts between processes through Redis.
type RedisRenderCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	group  singleflight.Group
}

// NewRedisRenderCache wraps a redis client. A non-positive TTL disables expiry.
func NewRedisRenderCache(client *redis.Client, ttl time.Duration) *RedisRenderCache {
	return &RedisRenderCache{client: client, ttl: ttl, prefix: redisChartPrefix}
}

// GetOrRender loads the chart from Redis or renders and stores it.
func (c *RedisRenderCache) GetOrRender(ctx context.Context, key string, render func() (string, error)) (string, error) {
	if c == nil || c.client == nil {
		return render()
	}
	fullKey := c.prefix + key
	html, err := c.client.Get(ctx, fullKey).Result()
	if err == nil {
		return html, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("dashboard: chart cache get: %w", err)
	}
	result := c.group.DoChan(fullKey, func() (any, error) {
		html, err := render()
		if err != nil {
			return "", err
		}
		if err := c.client.Set(ctx, fullKey, html, c.ttl).Err(); err != nil {
			return "", fmt.Errorf("dashboard: chart cache set: %w", err)
		}
		return html, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
