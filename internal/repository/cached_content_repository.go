package repository

import (
	"context"
	"errors"

	"quiz-ai-cache/internal/domain"

	"go.uber.org/zap"
)

// CachedContentRepository puts a domain.ContentCache in front of a content store.
// The store stays authoritative: cache failures are logged and never fail a call.
type CachedContentRepository struct {
	store  domain.ContentRepository
	cache  domain.ContentCache
	logger *zap.Logger
}

// NewCachedContentRepository wraps store with cache.
func NewCachedContentRepository(store domain.ContentRepository, cache domain.ContentCache, logger *zap.Logger) *CachedContentRepository {
	return &CachedContentRepository{store: store, cache: cache, logger: logger}
}

// GetContent reads the cache first and fills it on a store hit.
func (r *CachedContentRepository) GetContent(ctx context.Context, key domain.CacheKey) (string, error) {
	content, err := r.cache.Lookup(ctx, key)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		r.logger.Warn("Content cache lookup failed, reading store", zap.Stringer("key", key), zap.Error(err))
	}

	content, err = r.store.GetContent(ctx, key)
	if err != nil {
		return "", err
	}
	if err := r.cache.Store(ctx, key, content); err != nil {
		r.logger.Warn("Failed to fill content cache", zap.Stringer("key", key), zap.Error(err))
	}
	return content, nil
}

// SaveContent writes the store, then the cache.
func (r *CachedContentRepository) SaveContent(ctx context.Context, entry domain.CacheEntry) error {
	if err := r.store.SaveContent(ctx, entry); err != nil {
		return err
	}
	if err := r.cache.Store(ctx, entry.Key, entry.Content); err != nil {
		r.logger.Warn("Failed to update content cache", zap.Stringer("key", entry.Key), zap.Error(err))
	}
	return nil
}

var _ domain.ContentRepository = (*CachedContentRepository)(nil)
