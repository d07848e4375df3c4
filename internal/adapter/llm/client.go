package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"quiz-ai-cache/internal/config"
	"quiz-ai-cache/internal/prompt"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options tunes retries and call parameters.
type Options struct {
	MaxRetries   int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	LoadingDelay time.Duration
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float64
	Fallback     bool
	// RateLimit caps requests per second across all workers. Zero disables it.
	RateLimit float64
}

// OptionsFromConfig copies the generation settings out of the loaded config.
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		MaxRetries:   cfg.MaxRetries,
		BaseDelay:    cfg.BaseDelay,
		MaxDelay:     cfg.MaxDelay,
		LoadingDelay: cfg.LoadingDelay,
		Timeout:      cfg.Timeout,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		Fallback:     cfg.Fallback,
		RateLimit:    cfg.RateLimit,
	}
}

// AttemptObserver receives one event per provider call.
type AttemptObserver interface {
	ObserveAttempt(outcome string, elapsed time.Duration)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithSleep replaces the backoff sleeper, mainly for tests.
func WithSleep(fn SleepFunc) ClientOption {
	return func(c *Client) { c.sleep = fn }
}

// WithObserver reports every attempt to o.
func WithObserver(o AttemptObserver) ClientOption {
	return func(c *Client) { c.observer = o }
}

// Client calls the language model with credential rotation and bounded retries.
type Client struct {
	pool     *CredentialPool
	factory  ModelFactory
	opts     Options
	limiter  *rate.Limiter
	sleep    SleepFunc
	observer AttemptObserver
	logger   *zap.Logger

	mu       sync.Mutex
	backends map[int]*Backend
}

// NewClient creates a Client. The pool is shared by every caller of Generate.
func NewClient(pool *CredentialPool, factory ModelFactory, opts Options, logger *zap.Logger, options ...ClientOption) *Client {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	c := &Client{
		pool:     pool,
		factory:  factory,
		opts:     opts,
		sleep:    sleepContext,
		logger:   logger,
		backends: make(map[int]*Backend, pool.Len()),
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Generate returns the model's answer to msgs.
//
// Each round walks every credential once, starting at the shared cursor. A transient
// failure moves on to the next credential; a finished round backs off before the next
// one. A configuration failure (revoked or unauthorized key) also moves on, and that
// credential is skipped for the rest of the call. A permanent failure ends the call
// immediately. After MaxRetries rounds the call fails with ErrCredentialsExhausted.
func (c *Client) Generate(ctx context.Context, msgs prompt.Messages) (string, error) {
	attempts := 0
	var lastErr error
	rejected := make(map[int]bool, c.pool.Len())

	for round := 0; round < c.opts.MaxRetries; round++ {
		tried := make(map[int]bool, c.pool.Len())
		for idx := range rejected {
			tried[idx] = true
		}
		for {
			cred, ok := c.pool.NextExcluding(tried)
			if !ok {
				break
			}
			tried[cred.Index] = true
			attempts++

			start := time.Now()
			text, err := c.attempt(ctx, cred, msgs)
			if err == nil {
				c.observe("success", time.Since(start))
				return text, nil
			}

			lastErr = err
			class := Classify(err)
			c.observe(class.String(), time.Since(start))

			if ctx.Err() != nil {
				return "", &GenerationError{Class: Permanent, Attempts: attempts, Err: ctx.Err()}
			}
			if class == Configuration {
				rejected[cred.Index] = true
				c.logger.Warn("Credential rejected, skipping it for this item",
					zap.String("credential", cred.Masked()),
					zap.Int("attempt", attempts),
					zap.Error(err))
				continue
			}
			if class != Transient {
				c.logger.Warn("Generation failed",
					zap.String("class", class.String()),
					zap.String("credential", cred.Masked()),
					zap.Int("attempt", attempts),
					zap.Error(err))
				return "", &GenerationError{Class: class, Attempts: attempts, Err: err}
			}

			c.logger.Warn("Transient generation failure, rotating credential",
				zap.String("credential", cred.Masked()),
				zap.Int("round", round+1),
				zap.Int("attempt", attempts),
				zap.Error(err))

			if IsLoading(err) && c.opts.LoadingDelay > 0 {
				if err := c.sleep(ctx, c.opts.LoadingDelay); err != nil {
					return "", &GenerationError{Class: Permanent, Attempts: attempts, Err: err}
				}
			}
		}

		if len(rejected) == c.pool.Len() {
			c.logger.Error("Every credential was rejected",
				zap.Int("credentials", c.pool.Len()),
				zap.Error(lastErr))
			return "", &GenerationError{Class: Configuration, Attempts: attempts, Err: lastErr}
		}

		if round < c.opts.MaxRetries-1 {
			delay := c.backoff(round)
			c.logger.Info("All credentials failed this round, backing off",
				zap.Int("round", round+1),
				zap.Duration("delay", delay))
			if err := c.sleep(ctx, delay); err != nil {
				return "", &GenerationError{Class: Permanent, Attempts: attempts, Err: err}
			}
		}
	}

	c.logger.Error("All credentials exhausted",
		zap.Int("credentials", c.pool.Len()),
		zap.Int("attempts", attempts),
		zap.Error(lastErr))
	return "", &GenerationError{
		Class:    Transient,
		Attempts: attempts,
		Err:      fmt.Errorf("%w: %w", ErrCredentialsExhausted, lastErr),
	}
}

func (c *Client) attempt(ctx context.Context, cred Credential, msgs prompt.Messages) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	backend, err := c.backend(ctx, cred)
	if err != nil {
		return "", err
	}

	callCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	callOpts := []llms.CallOption{llms.WithTemperature(c.opts.Temperature)}
	if c.opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(c.opts.MaxTokens))
	}

	content := make([]llms.MessageContent, 0, 2)
	if msgs.System != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, msgs.System))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, msgs.User))

	var text string
	resp, err := backend.Chat.GenerateContent(callCtx, content, callOpts...)
	switch {
	case err == nil:
		if len(resp.Choices) == 0 {
			return "", ErrEmptyCompletion
		}
		text = resp.Choices[0].Content
	case c.opts.Fallback && IsChatUnsupported(err):
		model := backend.Completion
		if model == nil {
			model = backend.Chat
		}
		c.logger.Info("Chat protocol rejected, falling back to text completion",
			zap.String("credential", cred.Masked()),
			zap.Error(err))
		text, err = llms.GenerateFromSinglePrompt(callCtx, model, msgs.User, callOpts...)
		if err != nil {
			return "", err
		}
	default:
		return "", err
	}

	text = cleanCompletion(text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// backend returns the cached models for cred, building them on first use.
func (c *Client) backend(ctx context.Context, cred Credential) (*Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.backends[cred.Index]; ok {
		return b, nil
	}
	b, err := c.factory(ctx, cred.Key)
	if err != nil {
		return nil, err
	}
	c.backends[cred.Index] = b
	return b, nil
}

func (c *Client) backoff(round int) time.Duration {
	if round > 20 && c.opts.MaxDelay > 0 {
		return c.opts.MaxDelay
	}
	delay := c.opts.BaseDelay << round
	if c.opts.MaxDelay > 0 && (delay > c.opts.MaxDelay || delay <= 0) {
		return c.opts.MaxDelay
	}
	return delay
}

func (c *Client) observe(outcome string, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveAttempt(outcome, elapsed)
	}
}

// cleanCompletion drops a leading <think> block emitted by reasoning models.
func cleanCompletion(text string) string {
	text = strings.TrimSpace(text)
	if thinkStart := strings.Index(text, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(text, "</think>"); thinkEnd > thinkStart {
			text = text[:thinkStart] + text[thinkEnd+len("</think>"):]
		}
	}
	return strings.TrimSpace(text)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
