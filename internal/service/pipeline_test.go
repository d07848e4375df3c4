package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-ai-cache/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newItem(id string, force bool) domain.WorkItem {
	return domain.WorkItem{
		Seq:      1,
		Question: makeQuestions(id)[0],
		Language: domain.LanguageEnglish,
		Type:     domain.ContentTheory,
		Force:    force,
	}
}

func TestCacheGate_Lookup(t *testing.T) {
	ctx := context.Background()
	key := newItem("1", false).Key()

	t.Run("Hit", func(t *testing.T) {
		repo := new(MockContentRepository)
		repo.On("GetContent", mock.Anything, key).Return("stored", nil).Once()
		content, found := NewCacheGate(repo, time.Second, zap.NewNop()).Lookup(ctx, key)
		assert.True(t, found)
		assert.Equal(t, "stored", content)
	})

	t.Run("Miss", func(t *testing.T) {
		repo := new(MockContentRepository)
		repo.On("GetContent", mock.Anything, key).Return("", domain.ErrCacheMiss).Once()
		_, found := NewCacheGate(repo, time.Second, zap.NewNop()).Lookup(ctx, key)
		assert.False(t, found)
	})

	t.Run("ErrorIsMiss", func(t *testing.T) {
		repo := new(MockContentRepository)
		repo.On("GetContent", mock.Anything, key).Return("", errors.New("connection reset")).Once()
		_, found := NewCacheGate(repo, time.Second, zap.NewNop()).Lookup(ctx, key)
		assert.False(t, found)
	})

	t.Run("AppliesTimeout", func(t *testing.T) {
		repo := new(MockContentRepository)
		repo.On("GetContent", mock.MatchedBy(func(c context.Context) bool {
			_, ok := c.Deadline()
			return ok
		}), key).Return("", domain.ErrCacheMiss).Once()
		NewCacheGate(repo, time.Second, zap.NewNop()).Lookup(ctx, key)
		repo.AssertExpectations(t)
	})
}

func TestCacheBuilder_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("Cached", func(t *testing.T) {
		item := newItem("1", false)
		repo, gen := new(MockContentRepository), new(MockContentGenerator)
		repo.On("GetContent", mock.Anything, item.Key()).Return("stored", nil).Once()

		res := NewCacheBuilder(repo, gen, time.Second, zap.NewNop()).Process(ctx, item)
		assert.Equal(t, domain.StatusCached, res.Status)
		assert.NoError(t, res.Err)
		gen.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything)
	})

	t.Run("GeneratesAndSaves", func(t *testing.T) {
		item := newItem("2", false)
		repo, gen := new(MockContentRepository), new(MockContentGenerator)
		repo.On("GetContent", mock.Anything, item.Key()).Return("", domain.ErrCacheMiss).Once()
		gen.On("GenerateContent", mock.Anything, item).Return("fresh", nil).Once()
		repo.On("SaveContent", mock.Anything, mock.MatchedBy(func(e domain.CacheEntry) bool {
			return e.Key == item.Key() && e.Content == "fresh" && !e.CreatedAt.IsZero()
		})).Return(nil).Once()

		res := NewCacheBuilder(repo, gen, time.Second, zap.NewNop()).Process(ctx, item)
		assert.Equal(t, domain.StatusSuccess, res.Status)
		repo.AssertExpectations(t)
		gen.AssertExpectations(t)
	})

	t.Run("ForceSkipsGate", func(t *testing.T) {
		item := newItem("3", true)
		repo, gen := new(MockContentRepository), new(MockContentGenerator)
		gen.On("GenerateContent", mock.Anything, item).Return("fresh", nil).Once()
		repo.On("SaveContent", mock.Anything, mock.Anything).Return(nil).Once()

		res := NewCacheBuilder(repo, gen, time.Second, zap.NewNop()).Process(ctx, item)
		assert.Equal(t, domain.StatusSuccess, res.Status)
		repo.AssertNotCalled(t, "GetContent", mock.Anything, mock.Anything)
	})

	t.Run("GenerationFailed", func(t *testing.T) {
		item := newItem("4", false)
		repo, gen := new(MockContentRepository), new(MockContentGenerator)
		repo.On("GetContent", mock.Anything, item.Key()).Return("", domain.ErrCacheMiss).Once()
		gen.On("GenerateContent", mock.Anything, item).Return("", errors.New("quota exceeded")).Once()

		res := NewCacheBuilder(repo, gen, time.Second, zap.NewNop()).Process(ctx, item)
		assert.Equal(t, domain.StatusGenerationFailed, res.Status)
		assert.Error(t, res.Err)
		repo.AssertNotCalled(t, "SaveContent", mock.Anything, mock.Anything)
	})

	t.Run("SaveFailed", func(t *testing.T) {
		item := newItem("5", false)
		repo, gen := new(MockContentRepository), new(MockContentGenerator)
		repo.On("GetContent", mock.Anything, item.Key()).Return("", domain.ErrCacheMiss).Once()
		gen.On("GenerateContent", mock.Anything, item).Return("fresh", nil).Once()
		repo.On("SaveContent", mock.Anything, mock.Anything).Return(errors.New("503")).Once()

		res := NewCacheBuilder(repo, gen, time.Second, zap.NewNop()).Process(ctx, item)
		assert.Equal(t, domain.StatusSaveFailed, res.Status)
		assert.Equal(t, domain.ErrStore, domain.CodeOf(res.Err))
	})
}
