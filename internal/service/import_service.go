package service

import (
	"context"

	"quiz-ai-cache/internal/domain"

	"go.uber.org/zap"
)

// ImportResult reports the outcome of a question import.
type ImportResult struct {
	Imported  int
	Failed    int
	FailedIDs []string
}

// ImportService writes parsed questions to the question store in batches.
type ImportService struct {
	repo      domain.QuestionRepository
	batchSize int
	logger    *zap.Logger
}

// NewImportService creates an ImportService. batchSize < 1 writes one batch per question.
func NewImportService(repo domain.QuestionRepository, batchSize int, logger *zap.Logger) *ImportService {
	if batchSize < 1 {
		batchSize = 1
	}
	return &ImportService{repo: repo, batchSize: batchSize, logger: logger}
}

// Import upserts questions. A failed batch is retried one question at a time
// so a single bad row does not drop its neighbours.
// The error is non-nil only when ctx ends before all batches were attempted.
func (s *ImportService) Import(ctx context.Context, questions []*domain.Question) (ImportResult, error) {
	var res ImportResult
	for start := 0; start < len(questions); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		end := min(start+s.batchSize, len(questions))
		batch := questions[start:end]

		err := s.repo.UpsertQuestions(ctx, batch)
		if err == nil {
			res.Imported += len(batch)
			s.logger.Info("Imported question batch", zap.Int("from", start+1), zap.Int("to", end))
			continue
		}
		s.logger.Warn("Batch upsert failed, retrying per question",
			zap.Int("from", start+1), zap.Int("to", end), zap.Error(err))

		for _, q := range batch {
			if err := s.repo.UpsertQuestions(ctx, []*domain.Question{q}); err != nil {
				s.logger.Error("Failed to import question", zap.String("question_id", q.ID), zap.Error(err))
				res.Failed++
				res.FailedIDs = append(res.FailedIDs, q.ID)
				continue
			}
			res.Imported++
		}
	}
	return res, nil
}
