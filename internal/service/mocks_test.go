package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"quiz-ai-cache/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockContentRepository is a mock type for domain.ContentRepository
type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) GetContent(ctx context.Context, key domain.CacheKey) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockContentRepository) SaveContent(ctx context.Context, entry domain.CacheEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockContentGenerator is a mock type for domain.ContentGenerator
type MockContentGenerator struct {
	mock.Mock
}

func (m *MockContentGenerator) GenerateContent(ctx context.Context, item domain.WorkItem) (string, error) {
	args := m.Called(ctx, item)
	return args.String(0), args.Error(1)
}

// MockQuestionRepository is a mock type for domain.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) ListQuestions(ctx context.Context) ([]*domain.Question, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) UpsertQuestions(ctx context.Context, questions []*domain.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

// memoryContentStore is a map-backed content store keyed like the real table.
type memoryContentStore struct {
	mu    sync.Mutex
	rows  map[domain.CacheKey]string
	saves int
}

func newMemoryContentStore() *memoryContentStore {
	return &memoryContentStore{rows: make(map[domain.CacheKey]string)}
}

func (s *memoryContentStore) GetContent(_ context.Context, key domain.CacheKey) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.rows[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return content, nil
}

func (s *memoryContentStore) SaveContent(_ context.Context, entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[entry.Key] = entry.Content
	s.saves++
	return nil
}

func (s *memoryContentStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// stubGenerator counts calls, tracks peak concurrency and can panic on one key.
type stubGenerator struct {
	latency time.Duration
	panicOn *domain.CacheKey

	calls    atomic.Int64
	inflight atomic.Int64
	peak     atomic.Int64
}

func (g *stubGenerator) GenerateContent(_ context.Context, item domain.WorkItem) (string, error) {
	g.calls.Add(1)
	n := g.inflight.Add(1)
	defer g.inflight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if g.latency > 0 {
		time.Sleep(g.latency)
	}
	if g.panicOn != nil && *g.panicOn == item.Key() {
		panic("injected failure")
	}
	return fmt.Sprintf("content for %s", item.Key()), nil
}

// recordingReporter keeps every reported result.
type recordingReporter struct {
	results []domain.ItemResult
}

func (r *recordingReporter) Report(_ int, res domain.ItemResult) {
	r.results = append(r.results, res)
}

func makeQuestions(ids ...string) []*domain.Question {
	qs := make([]*domain.Question, len(ids))
	for i, id := range ids {
		qs[i] = &domain.Question{
			ID:            id,
			Question:      "Question " + id,
			Options:       []string{"A. one", "B. two"},
			CorrectAnswer: "A",
		}
	}
	return qs
}
