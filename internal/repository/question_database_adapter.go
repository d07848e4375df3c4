package repository

import (
	"context"
	"fmt"

	"quiz-ai-cache/internal/domain"
	"quiz-ai-cache/internal/repository/models"
	"quiz-ai-cache/internal/util"

	"github.com/jmoiron/sqlx"
)

type questionQueries struct {
	list   string
	upsert string
}

func buildQuestionQueries(dialect Dialect, table string) questionQueries {
	if dialect == DialectOracle {
		return questionQueries{
			list: fmt.Sprintf(`SELECT
		id "id",
		question "question",
		options "options",
		correct_answer "correct_answer",
		topic "topic",
		discussion_link "discussion_link",
		is_multiselect "is_multiselect"
	FROM %s
	ORDER BY id`, table),
			upsert: fmt.Sprintf(`MERGE INTO %s t
	USING dual ON (t.id = :1)
	WHEN MATCHED THEN UPDATE SET
		t.question = :2, t.options = :3, t.correct_answer = :4,
		t.topic = :5, t.discussion_link = :6, t.is_multiselect = :7
	WHEN NOT MATCHED THEN INSERT (id, question, options, correct_answer, topic, discussion_link, is_multiselect)
		VALUES (:8, :9, :10, :11, :12, :13, :14)`, table),
		}
	}
	return questionQueries{
		list: fmt.Sprintf(`SELECT id, question, array_to_json(options)::text AS options, correct_answer,
		topic, discussion_link, is_multiselect
	FROM %s
	ORDER BY id`, table),
		upsert: fmt.Sprintf(`INSERT INTO %s (id, question, options, correct_answer, topic, discussion_link, is_multiselect)
	VALUES ($1, $2, ARRAY(SELECT json_array_elements_text($3::json)), $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		question = EXCLUDED.question, options = EXCLUDED.options, correct_answer = EXCLUDED.correct_answer,
		topic = EXCLUDED.topic, discussion_link = EXCLUDED.discussion_link, is_multiselect = EXCLUDED.is_multiselect`, table),
	}
}

// QuestionDatabaseAdapter implements domain.QuestionRepository using sqlx.DB
type QuestionDatabaseAdapter struct {
	db      *sqlx.DB
	tm      domain.TransactionManager
	dialect Dialect
	queries questionQueries
}

// NewQuestionDatabaseAdapter creates a new instance of QuestionDatabaseAdapter
func NewQuestionDatabaseAdapter(db *sqlx.DB, dialect Dialect, table string) (*QuestionDatabaseAdapter, error) {
	if !util.IsIdentifier(table) {
		return nil, domain.NewConfigError(fmt.Sprintf("invalid table name %q", table), nil)
	}
	return &QuestionDatabaseAdapter{
		db:      db,
		tm:      NewTransactionManagerAdapter(db),
		dialect: dialect,
		queries: buildQuestionQueries(dialect, table),
	}, nil
}

// ListQuestions implements domain.QuestionRepository
func (a *QuestionDatabaseAdapter) ListQuestions(ctx context.Context) ([]*domain.Question, error) {
	var rows []models.Question
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, a.queries.list); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	questions := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, toDomainQuestion(&rows[i]))
	}
	return questions, nil
}

// UpsertQuestions implements domain.QuestionRepository. The whole batch commits or none of it does.
func (a *QuestionDatabaseAdapter) UpsertQuestions(ctx context.Context, questions []*domain.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return a.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, a.db)
		for _, q := range questions {
			row := toModelQuestion(q)
			options, err := row.Options.Value()
			if err != nil {
				return fmt.Errorf("failed to encode options of question %s: %w", q.ID, err)
			}
			_, err = exec.ExecContext(txCtx, a.queries.upsert, a.dialect.mergeArgs([]interface{}{
				row.ID,
				row.Question,
				options,
				row.CorrectAnswer,
				row.Topic,
				row.DiscussionLink,
				a.dialect.boolArg(row.IsMultiselect),
			})...)
			if err != nil {
				return fmt.Errorf("failed to upsert question %s: %w", q.ID, err)
			}
		}
		return nil
	})
}

func toDomainQuestion(m *models.Question) *domain.Question {
	return &domain.Question{
		ID:             m.ID,
		Question:       m.Question,
		Options:        []string(m.Options),
		CorrectAnswer:  m.CorrectAnswer,
		Topic:          util.NullStringToString(m.Topic),
		DiscussionLink: util.NullStringToString(m.DiscussionLink),
		IsMultiselect:  m.IsMultiselect,
	}
}

func toModelQuestion(q *domain.Question) *models.Question {
	return &models.Question{
		ID:             q.ID,
		Question:       q.Question,
		Options:        models.StringSlice(q.Options),
		CorrectAnswer:  q.CorrectAnswer,
		Topic:          util.StringToNullString(q.Topic),
		DiscussionLink: util.StringToNullString(q.DiscussionLink),
		IsMultiselect:  q.IsMultiselect,
	}
}

// Static assertion
var _ domain.QuestionRepository = (*QuestionDatabaseAdapter)(nil)
