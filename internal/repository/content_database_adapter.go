package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-ai-cache/internal/config"
	"quiz-ai-cache/internal/domain"
	"quiz-ai-cache/internal/util"

	"github.com/jmoiron/sqlx"
)

type contentQueries struct {
	get    string
	upsert string
	delete string
	insert string
}

func buildContentQueries(dialect Dialect, table string) contentQueries {
	if dialect == DialectOracle {
		return contentQueries{
			get: fmt.Sprintf(`SELECT content "content" FROM %s
	WHERE question_id = :1 AND language = :2 AND type = :3
	FETCH FIRST 1 ROWS ONLY`, table),
			upsert: fmt.Sprintf(`MERGE INTO %s t
	USING dual ON (t.question_id = :1 AND t.language = :2 AND t.type = :3)
	WHEN MATCHED THEN UPDATE SET t.content = :4, t.created_at = :5
	WHEN NOT MATCHED THEN INSERT (question_id, language, type, content, created_at)
		VALUES (:6, :7, :8, :9, :10)`, table),
			delete: fmt.Sprintf(`DELETE FROM %s WHERE question_id = :1 AND language = :2 AND type = :3`, table),
			insert: fmt.Sprintf(`INSERT INTO %s (question_id, language, type, content, created_at) VALUES (:1, :2, :3, :4, :5)`, table),
		}
	}
	return contentQueries{
		get: fmt.Sprintf(`SELECT content FROM %s
	WHERE question_id = $1 AND language = $2 AND type = $3
	LIMIT 1`, table),
		upsert: fmt.Sprintf(`INSERT INTO %s (question_id, language, type, content, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (question_id, language, type) DO UPDATE SET
		content = EXCLUDED.content, created_at = EXCLUDED.created_at`, table),
		delete: fmt.Sprintf(`DELETE FROM %s WHERE question_id = $1 AND language = $2 AND type = $3`, table),
		insert: fmt.Sprintf(`INSERT INTO %s (question_id, language, type, content, created_at) VALUES ($1, $2, $3, $4, $5)`, table),
	}
}

// ContentDatabaseAdapter implements domain.ContentRepository using sqlx.DB
type ContentDatabaseAdapter struct {
	db         *sqlx.DB
	tm         domain.TransactionManager
	dialect    Dialect
	upsertMode string
	queries    contentQueries
	now        func() time.Time
}

// NewContentDatabaseAdapter creates a new instance of ContentDatabaseAdapter
func NewContentDatabaseAdapter(db *sqlx.DB, dialect Dialect, table, upsertMode string) (*ContentDatabaseAdapter, error) {
	if !util.IsIdentifier(table) {
		return nil, domain.NewConfigError(fmt.Sprintf("invalid table name %q", table), nil)
	}
	if upsertMode == "" {
		upsertMode = config.UpsertMerge
	}
	return &ContentDatabaseAdapter{
		db:         db,
		tm:         NewTransactionManagerAdapter(db),
		dialect:    dialect,
		upsertMode: upsertMode,
		queries:    buildContentQueries(dialect, table),
		now:        time.Now,
	}, nil
}

// GetContent implements domain.ContentRepository
func (a *ContentDatabaseAdapter) GetContent(ctx context.Context, key domain.CacheKey) (string, error) {
	var content string
	err := GetExecutor(ctx, a.db).GetContext(ctx, &content, a.queries.get,
		key.QuestionID, string(key.Language), string(key.Type))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get content for %s: %w", key, err)
	}
	if content == "" {
		return "", domain.ErrCacheMiss
	}
	return content, nil
}

// SaveContent implements domain.ContentRepository
func (a *ContentDatabaseAdapter) SaveContent(ctx context.Context, entry domain.CacheEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = a.now()
	}
	args := []interface{}{entry.Key.QuestionID, string(entry.Key.Language), string(entry.Key.Type), entry.Content, createdAt.UTC()}

	if a.upsertMode == config.UpsertReplace {
		return a.tm.WithTransaction(ctx, func(txCtx context.Context) error {
			exec := GetExecutor(txCtx, a.db)
			if _, err := exec.ExecContext(txCtx, a.queries.delete, args[:3]...); err != nil {
				return fmt.Errorf("failed to delete content for %s: %w", entry.Key, err)
			}
			if _, err := exec.ExecContext(txCtx, a.queries.insert, args...); err != nil {
				return fmt.Errorf("failed to insert content for %s: %w", entry.Key, err)
			}
			return nil
		})
	}

	if _, err := GetExecutor(ctx, a.db).ExecContext(ctx, a.queries.upsert, a.dialect.mergeArgs(args)...); err != nil {
		return fmt.Errorf("failed to upsert content for %s: %w", entry.Key, err)
	}
	return nil
}

// Static assertion
var _ domain.ContentRepository = (*ContentDatabaseAdapter)(nil)
