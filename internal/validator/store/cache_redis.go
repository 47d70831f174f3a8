package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for cached lookup results
	cacheKeyPrefix = "ffn:valid:"

	defaultCacheTTL = 10 * time.Minute
)

// RedisCache caches Quick mode lookup results with a TTL so directory
// changes are picked up eventually.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisCacheOption func(*RedisCache)

func WithCacheTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func NewRedisCache(client *redis.Client, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{client: client, ttl: defaultCacheTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *RedisCache) Get(ctx context.Context, number string) (bool, bool, error) {
	val, err := c.client.Get(ctx, cacheKeyPrefix+number).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return val == "1", true, nil
}

func (c *RedisCache) Set(ctx context.Context, number string, valid bool) error {
	val := "0"
	if valid {
		val = "1"
	}
	return c.client.Set(ctx, cacheKeyPrefix+number, val, c.ttl).Err()
}
