package repository

import (
	"context"
	"fmt"

	"quiz-ai-cache/internal/adapter"
	"quiz-ai-cache/internal/cache"
	"quiz-ai-cache/internal/config"
	"quiz-ai-cache/internal/database"
	"quiz-ai-cache/internal/domain"
	"quiz-ai-cache/internal/repository/rest"

	"go.uber.org/zap"
)

// Repositories bundles the stores a command needs.
type Repositories struct {
	Questions domain.QuestionRepository
	Content   domain.ContentRepository
	closers   []func() error
}

// Close releases database and redis connections.
func (r *Repositories) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open builds the configured store backend and, when redis is configured, a
// redis lookaside cache in front of the content store.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Repositories, error) {
	repos := &Repositories{}

	switch cfg.Store.Backend {
	case config.StoreREST:
		store, err := rest.NewStore(rest.Options{
			BaseURL:        cfg.Store.URL,
			APIKey:         cfg.Store.APIKey,
			QuestionsTable: cfg.Store.QuestionsTable,
			CacheTable:     cfg.Store.CacheTable,
			UpsertMode:     cfg.Store.UpsertMode,
			Timeout:        cfg.Store.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		repos.Questions = store
		repos.Content = store

	case config.StorePostgres, config.StoreOracle:
		dialect, err := ParseDialect(cfg.Store.Backend)
		if err != nil {
			return nil, err
		}
		driver := database.DriverPostgres
		if dialect == DialectOracle {
			driver = database.DriverOracle
		}
		db, err := database.NewSQLXDB(ctx, driver, cfg.Store.DSN, logger)
		if err != nil {
			return nil, domain.NewStoreError("failed to connect to database", err)
		}
		repos.closers = append(repos.closers, db.Close)

		questions, err := NewQuestionDatabaseAdapter(db, dialect, cfg.Store.QuestionsTable)
		if err != nil {
			repos.Close()
			return nil, err
		}
		content, err := NewContentDatabaseAdapter(db, dialect, cfg.Store.CacheTable, cfg.Store.UpsertMode)
		if err != nil {
			repos.Close()
			return nil, err
		}
		repos.Questions = questions
		repos.Content = content

	default:
		return nil, domain.NewConfigError(fmt.Sprintf("unknown store backend %q", cfg.Store.Backend), nil)
	}

	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// redis is an accelerator only
			logger.Warn("Redis unavailable, continuing without content cache", zap.Error(err))
		} else {
			repos.closers = append(repos.closers, client.Close)
			repos.Content = NewCachedContentRepository(repos.Content, adapter.NewRedisContentCache(client, cfg.Redis.TTL), logger)
			logger.Info("Redis content cache enabled", zap.String("address", cfg.Redis.Address))
		}
	}

	return repos, nil
}
