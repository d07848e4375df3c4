package domain

import (
	"context"
	"time"
)

// WorkItem is one (question, language, content type) generation task.
type WorkItem struct {
	Seq      int
	Question *Question
	Language Language
	Type     ContentType
	Force    bool
}

// Key returns the cache key the item reads and writes.
func (w WorkItem) Key() CacheKey {
	return CacheKey{QuestionID: w.Question.ID, Language: w.Language, Type: w.Type}
}

// ItemStatus is the terminal outcome of a WorkItem.
type ItemStatus string

const (
	StatusCached           ItemStatus = "cached"
	StatusSuccess          ItemStatus = "success"
	StatusSaveFailed       ItemStatus = "save_failed"
	StatusGenerationFailed ItemStatus = "generation_failed"
)

// ItemResult records what happened to one WorkItem.
type ItemResult struct {
	Item     WorkItem
	Status   ItemStatus
	Err      error
	Duration time.Duration
}

// Summary aggregates outcomes of a run.
type Summary struct {
	Total            int
	Success          int
	Cached           int
	SaveFailed       int
	GenerationFailed int
	NotRun           int
}

// Add counts one result.
func (s *Summary) Add(status ItemStatus) {
	switch status {
	case StatusSuccess:
		s.Success++
	case StatusCached:
		s.Cached++
	case StatusSaveFailed:
		s.SaveFailed++
	case StatusGenerationFailed:
		s.GenerationFailed++
	}
}

// Failed returns the number of items that did not end with stored content.
func (s Summary) Failed() int {
	return s.SaveFailed + s.GenerationFailed
}

// ContentGenerator produces content for a WorkItem.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, item WorkItem) (string, error)
}
