package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quiz-ai-cache/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ItemProcessor runs one work item to a terminal status.
type ItemProcessor interface {
	Process(ctx context.Context, item domain.WorkItem) domain.ItemResult
}

// ItemObserver receives every finished item, e.g. for metrics.
type ItemObserver interface {
	ObserveItem(status domain.ItemStatus, elapsed time.Duration)
}

// Reporter receives every finished item for progress output.
// Calls are serialized by the executor.
type Reporter interface {
	Report(total int, result domain.ItemResult)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) ExecutorOption {
	return func(e *Executor) { e.reporter = r }
}

// WithItemObserver sets the item observer.
func WithItemObserver(o ItemObserver) ExecutorOption {
	return func(e *Executor) { e.observer = o }
}

// Executor runs work items on a bounded pool of workers.
type Executor struct {
	processor ItemProcessor
	workers   int
	reporter  Reporter
	observer  ItemObserver
	logger    *zap.Logger
}

// NewExecutor creates an executor with the given worker limit (minimum 1).
func NewExecutor(processor ItemProcessor, workers int, logger *zap.Logger, opts ...ExecutorOption) *Executor {
	if workers < 1 {
		workers = 1
	}
	e := &Executor{processor: processor, workers: workers, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes items and returns the aggregate outcome.
//
// Cancelling ctx stops dispatching new items; items already running finish
// on a context detached from ctx and are bounded by their own timeouts.
// Items never dispatched are counted in Summary.NotRun.
func (e *Executor) Run(ctx context.Context, items []domain.WorkItem) domain.Summary {
	summary := domain.Summary{Total: len(items)}
	if len(items) == 0 {
		return summary
	}

	var (
		mu         sync.Mutex
		dispatched int
	)
	workCtx := context.WithoutCancel(ctx)

	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for _, item := range items {
		if ctx.Err() != nil {
			e.logger.Warn("Run interrupted, not dispatching remaining items",
				zap.Int("dispatched", dispatched),
				zap.Int("remaining", len(items)-dispatched),
			)
			break
		}
		dispatched++
		g.Go(func() error {
			res := e.process(workCtx, item)

			mu.Lock()
			summary.Add(res.Status)
			if e.reporter != nil {
				e.reporter.Report(len(items), res)
			}
			mu.Unlock()

			if e.observer != nil {
				e.observer.ObserveItem(res.Status, res.Duration)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary.NotRun = len(items) - dispatched
	return summary
}

// process shields the pool from a panicking item.
func (e *Executor) process(ctx context.Context, item domain.WorkItem) (res domain.ItemResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Work item panicked",
				zap.String("question_id", item.Question.ID),
				zap.String("language", string(item.Language)),
				zap.String("type", string(item.Type)),
				zap.Any("panic", r),
			)
			res = domain.ItemResult{
				Item:     item,
				Status:   domain.StatusGenerationFailed,
				Err:      domain.NewInternalError(fmt.Sprintf("panic processing %s", item.Key()), fmt.Errorf("%v", r)),
				Duration: time.Since(start),
			}
		}
	}()
	return e.processor.Process(ctx, item)
}
