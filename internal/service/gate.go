package service

import (
	"context"
	"errors"
	"time"

	"quiz-ai-cache/internal/domain"

	"go.uber.org/zap"
)

// CacheGate decides whether a work item already has stored content.
type CacheGate struct {
	repo    domain.ContentRepository
	timeout time.Duration
	logger  *zap.Logger
}

// NewCacheGate creates a gate reading from repo; timeout bounds each lookup.
func NewCacheGate(repo domain.ContentRepository, timeout time.Duration, logger *zap.Logger) *CacheGate {
	return &CacheGate{repo: repo, timeout: timeout, logger: logger}
}

// Lookup returns the stored content for key. A failed lookup reports not found,
// so the item is regenerated.
func (g *CacheGate) Lookup(ctx context.Context, key domain.CacheKey) (string, bool) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	content, err := g.repo.GetContent(ctx, key)
	switch {
	case err == nil:
		return content, true
	case errors.Is(err, domain.ErrCacheMiss):
		return "", false
	default:
		g.logger.Warn("Cache lookup failed, treating as miss",
			zap.String("question_id", key.QuestionID),
			zap.String("language", string(key.Language)),
			zap.String("type", string(key.Type)),
			zap.Error(err),
		)
		return "", false
	}
}
