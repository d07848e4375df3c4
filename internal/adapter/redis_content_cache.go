package adapter

import (
	"context"
	"errors"
	"time"

	"quiz-ai-cache/internal/cache"
	"quiz-ai-cache/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisContentCache implements domain.ContentCache with plain redis strings.
type RedisContentCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisContentCache creates a cache whose entries expire after ttl (0 keeps them forever).
func NewRedisContentCache(client redis.Cmdable, ttl time.Duration) *RedisContentCache {
	return &RedisContentCache{client: client, ttl: ttl}
}

// Lookup translates redis.Nil to domain.ErrCacheMiss.
func (r *RedisContentCache) Lookup(ctx context.Context, key domain.CacheKey) (string, error) {
	val, err := r.client.Get(ctx, cache.ContentKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrCacheMiss
		}
		return "", err
	}
	if val == "" {
		return "", domain.ErrCacheMiss
	}
	return val, nil
}

// Store implements domain.ContentCache
func (r *RedisContentCache) Store(ctx context.Context, key domain.CacheKey, content string) error {
	return r.client.Set(ctx, cache.ContentKey(key), content, r.ttl).Err()
}

var _ domain.ContentCache = (*RedisContentCache)(nil)
