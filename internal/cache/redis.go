package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache interface using Redis
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// NewRedisCacheWithURL creates Redis cache from URL
func NewRedisCacheWithURL(url, prefix string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisCache(redis.NewClient(opt), prefix, ttl), nil
}

// Take implements Cache interface. Redis failures fall back to the loader.
func (c *RedisCache) Take(ctx context.Context, key string, loader func() ([]byte, error)) ([]byte, error) {
	cacheKey := c.prefix + key

	cached, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		slog.Warn("RedisCache: read failed, loading from source", "key", cacheKey, "error", err)
		return loader()
	}

	data, err := loader()
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		// The cache is optional; the loaded value is still good.
		slog.Warn("RedisCache: write failed", "key", cacheKey, "error", err)
	}
	return data, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
