package service

import (
	"context"
	"time"

	"quiz-ai-cache/internal/domain"

	"go.uber.org/zap"
)

// CacheBuilder runs the per-item pipeline: gate, generate, save.
type CacheBuilder struct {
	gate        *CacheGate
	generator   domain.ContentGenerator
	repo        domain.ContentRepository
	saveTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewCacheBuilder creates a CacheBuilder. storeTimeout bounds each store read and write.
func NewCacheBuilder(
	repo domain.ContentRepository,
	generator domain.ContentGenerator,
	storeTimeout time.Duration,
	logger *zap.Logger,
) *CacheBuilder {
	return &CacheBuilder{
		gate:        NewCacheGate(repo, storeTimeout, logger),
		generator:   generator,
		repo:        repo,
		saveTimeout: storeTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// Process runs one work item to a terminal status. It never returns an error;
// failures are reported in the result.
func (b *CacheBuilder) Process(ctx context.Context, item domain.WorkItem) domain.ItemResult {
	start := b.now()
	key := item.Key()
	log := b.logger.With(
		zap.String("question_id", key.QuestionID),
		zap.String("language", string(key.Language)),
		zap.String("type", string(key.Type)),
	)
	result := func(status domain.ItemStatus, err error) domain.ItemResult {
		return domain.ItemResult{Item: item, Status: status, Err: err, Duration: b.now().Sub(start)}
	}

	if !item.Force {
		if _, found := b.gate.Lookup(ctx, key); found {
			log.Debug("Content already cached")
			return result(domain.StatusCached, nil)
		}
	}

	content, err := b.generator.GenerateContent(ctx, item)
	if err != nil {
		log.Error("Content generation failed", zap.Error(err))
		return result(domain.StatusGenerationFailed, err)
	}

	saveCtx := ctx
	if b.saveTimeout > 0 {
		var cancel context.CancelFunc
		saveCtx, cancel = context.WithTimeout(ctx, b.saveTimeout)
		defer cancel()
	}
	entry := domain.CacheEntry{Key: key, Content: content, CreatedAt: b.now().UTC()}
	if err := b.repo.SaveContent(saveCtx, entry); err != nil {
		log.Error("Failed to save generated content", zap.Error(err))
		return result(domain.StatusSaveFailed, domain.NewStoreError("failed to save "+key.String(), err))
	}

	log.Info("Content generated and saved", zap.Int("length", len(content)))
	return result(domain.StatusSuccess, nil)
}
