package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the interface for theme caching implementations.
type Cache interface {
	// GetTheme retrieves a cached theme by lookup key.
	GetTheme(ctx context.Context, key string) (*Theme, bool)

	// SetTheme stores a theme in cache.
	SetTheme(ctx context.Context, key string, theme *Theme) error

	// GetActive retrieves the cached active-theme list.
	GetActive(ctx context.Context) ([]Theme, bool)

	// SetActive stores the active-theme list.
	SetActive(ctx context.Context, themes []Theme) error

	// Invalidate drops all cached catalog entries after a write.
	Invalidate(ctx context.Context) error
}

// NoOpCache disables caching, useful for tests.
type NoOpCache struct{}

func (NoOpCache) GetTheme(ctx context.Context, key string) (*Theme, bool) { return nil, false }
func (NoOpCache) SetTheme(ctx context.Context, key string, theme *Theme) error {
	return nil
}
func (NoOpCache) GetActive(ctx context.Context) ([]Theme, bool) { return nil, false }
func (NoOpCache) SetActive(ctx context.Context, themes []Theme) error {
	return nil
}
func (NoOpCache) Invalidate(ctx context.Context) error { return nil }

const (
	cacheKeyActive      = "catalog:themes:active"
	cacheKeyThemePrefix = "catalog:theme:"
)

// RedisCache caches catalog reads in redis. The catalog is read on every
// pricing request but written rarely, so a short TTL plus write invalidation
// keeps it fresh without a pub/sub layer.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a redis-backed catalog cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetTheme(ctx context.Context, key string) (*Theme, bool) {
	raw, err := c.client.Get(ctx, cacheKeyThemePrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var theme Theme
	if err := json.Unmarshal(raw, &theme); err != nil {
		return nil, false
	}
	return &theme, true
}

func (c *RedisCache) SetTheme(ctx context.Context, key string, theme *Theme) error {
	raw, err := json.Marshal(theme)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKeyThemePrefix+key, raw, c.ttl).Err()
}

func (c *RedisCache) GetActive(ctx context.Context) ([]Theme, bool) {
	raw, err := c.client.Get(ctx, cacheKeyActive).Bytes()
	if err != nil {
		return nil, false
	}
	var themes []Theme
	if err := json.Unmarshal(raw, &themes); err != nil {
		return nil, false
	}
	return themes, true
}

func (c *RedisCache) SetActive(ctx context.Context, themes []Theme) error {
	raw, err := json.Marshal(themes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKeyActive, raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, cacheKeyThemePrefix+"*", 0).Iterator()
	keys := []string{cacheKeyActive}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.client.Del(ctx, keys...).Err()
}
