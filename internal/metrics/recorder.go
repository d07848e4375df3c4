// Package metrics collects run counters and pushes them to a Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"quiz-ai-cache/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder holds the metrics of one run on its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	items        *prometheus.CounterVec
	itemDuration *prometheus.HistogramVec
	attempts     *prometheus.CounterVec
	attemptTime  prometheus.Histogram
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_ai_cache_items_total",
				Help: "Work items processed, by terminal status",
			},
			[]string{"status"},
		),
		itemDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quiz_ai_cache_item_duration_seconds",
				Help:    "Wall time of one work item",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"status"},
		),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_ai_cache_generation_attempts_total",
				Help: "Calls to the generation provider, by outcome",
			},
			[]string{"outcome"},
		),
		attemptTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quiz_ai_cache_generation_attempt_seconds",
				Help:    "Duration of one generation provider call",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
			},
		),
	}
	r.registry.MustRegister(r.items, r.itemDuration, r.attempts, r.attemptTime)
	return r
}

// ObserveItem records a finished work item.
func (r *Recorder) ObserveItem(status domain.ItemStatus, elapsed time.Duration) {
	r.items.WithLabelValues(string(status)).Inc()
	r.itemDuration.WithLabelValues(string(status)).Observe(elapsed.Seconds())
}

// ObserveAttempt records one provider call.
func (r *Recorder) ObserveAttempt(outcome string, elapsed time.Duration) {
	r.attempts.WithLabelValues(outcome).Inc()
	r.attemptTime.Observe(elapsed.Seconds())
}

// Registry exposes the registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Push sends the collected metrics to the Pushgateway at url, grouped by run id.
func (r *Recorder) Push(ctx context.Context, url, job, runID string) error {
	err := push.New(url, job).
		Gatherer(r.registry).
		Grouping("run_id", runID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
