package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quiz-ai-cache/internal/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// callLog records which credential served each call, across all fake models.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// fakeModel returns errs in order, then reply.
type fakeModel struct {
	name     string
	log      *callLog
	mu       sync.Mutex
	errs     []error
	reply    string
	messages [][]llms.MessageContent
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.log.add(m.name)
	m.mu.Lock()
	m.messages = append(m.messages, messages)
	var err error
	if len(m.errs) > 0 {
		err = m.errs[0]
		m.errs = m.errs[1:]
	}
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, p string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, p, options...)
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

type attemptCounter struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (a *attemptCounter) ObserveAttempt(outcome string, _ time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.outcomes == nil {
		a.outcomes = map[string]int{}
	}
	a.outcomes[outcome]++
}

func testOptions() Options {
	return Options{
		MaxRetries:   2,
		BaseDelay:    2 * time.Second,
		MaxDelay:     30 * time.Second,
		LoadingDelay: 10 * time.Second,
		Timeout:      time.Second,
		MaxTokens:    100,
		Temperature:  0.1,
		Fallback:     true,
	}
}

func newTestClient(t *testing.T, models map[string]*Backend, opts Options, sleeper *sleepRecorder, extra ...ClientOption) *Client {
	t.Helper()
	keys := make([]string, 0, len(models))
	for _, k := range []string{"k1", "k2", "k3"} {
		if _, ok := models[k]; ok {
			keys = append(keys, k)
		}
	}
	pool, err := NewCredentialPool(keys)
	require.NoError(t, err)

	factory := func(_ context.Context, apiKey string) (*Backend, error) {
		b, ok := models[apiKey]
		if !ok {
			return nil, ErrInvalidCredential
		}
		return b, nil
	}
	options := append([]ClientOption{WithSleep(sleeper.sleep)}, extra...)
	return NewClient(pool, factory, opts, zap.NewNop(), options...)
}

var testMessages = prompt.Messages{System: "sys", User: "explain"}

func TestClient_Generate_Success(t *testing.T) {
	log := &callLog{}
	m1 := &fakeModel{name: "k1", log: log, reply: "  answer  "}
	sleeper := &sleepRecorder{}
	counter := &attemptCounter{}
	client := newTestClient(t, map[string]*Backend{"k1": {Chat: m1}}, testOptions(), sleeper, WithObserver(counter))

	text, err := client.Generate(context.Background(), testMessages)
	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Empty(t, sleeper.delays)
	assert.Equal(t, 1, counter.outcomes["success"])

	require.Len(t, m1.messages, 1)
	require.Len(t, m1.messages[0], 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, m1.messages[0][0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, m1.messages[0][1].Role)
}

func TestClient_Generate_RotatesOnRateLimit(t *testing.T) {
	log := &callLog{}
	models := map[string]*Backend{
		"k1": {Chat: &fakeModel{name: "k1", log: log, errs: []error{errors.New("429 Too Many Requests")}}},
		"k2": {Chat: &fakeModel{name: "k2", log: log, reply: "ok"}},
	}
	sleeper := &sleepRecorder{}
	client := newTestClient(t, models, testOptions(), sleeper)

	text, err := client.Generate(context.Background(), testMessages)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, []string{"k1", "k2"}, log.snapshot())
	assert.Empty(t, sleeper.delays)
}

func TestClient_Generate_ExhaustsAllCredentials(t *testing.T) {
	log := &callLog{}
	rateLimited := func() []error {
		return []error{errors.New("429"), errors.New("429"), errors.New("429")}
	}
	models := map[string]*Backend{
		"k1": {Chat: &fakeModel{name: "k1", log: log, errs: rateLimited()}},
		"k2": {Chat: &fakeModel{name: "k2", log: log, errs: rateLimited()}},
		"k3": {Chat: &fakeModel{name: "k3", log: log, errs: rateLimited()}},
	}
	sleeper := &sleepRecorder{}
	counter := &attemptCounter{}
	client := newTestClient(t, models, testOptions(), sleeper, WithObserver(counter))

	_, err := client.Generate(context.Background(), testMessages)
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, Transient, genErr.Class)
	assert.Equal(t, 6, genErr.Attempts)
	assert.ErrorIs(t, err, ErrCredentialsExhausted)

	calls := log.snapshot()
	assert.Equal(t, []string{"k1", "k2", "k3", "k1", "k2", "k3"}, calls)
	for i := 1; i < len(calls); i++ {
		assert.NotEqual(t, calls[i-1], calls[i], "consecutive attempts must use different credentials")
	}
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeper.delays)
	assert.Equal(t, 6, counter.outcomes["transient"])
}

func TestClient_Generate_PermanentFailsFast(t *testing.T) {
	log := &callLog{}
	models := map[string]*Backend{
		"k1": {Chat: &fakeModel{name: "k1", log: log, errs: []error{errors.New("400 invalid argument")}}},
		"k2": {Chat: &fakeModel{name: "k2", log: log, reply: "never"}},
	}
	client := newTestClient(t, models, testOptions(), &sleepRecorder{})

	_, err := client.Generate(context.Background(), testMessages)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, Permanent, genErr.Class)
	assert.Equal(t, 1, genErr.Attempts)
	assert.Equal(t, []string{"k1"}, log.snapshot())
}

func TestClient_Generate_SkipsRejectedCredential(t *testing.T) {
	log := &callLog{}
	models := map[string]*Backend{
		"k1": {Chat: &fakeModel{name: "k1", log: log, errs: []error{errors.New("401 Unauthorized")}}},
		"k2": {Chat: &fakeModel{name: "k2", log: log, reply: "ok"}},
	}
	sleeper := &sleepRecorder{}
	client := newTestClient(t, models, testOptions(), sleeper)

	text, err := client.Generate(context.Background(), testMessages)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, []string{"k1", "k2"}, log.snapshot())
	assert.Empty(t, sleeper.delays)
}

func TestClient_Generate_RejectedCredentialNotRetried(t *testing.T) {
	log := &callLog{}
	models := map[string]*Backend{
		"k1": {Chat: &fakeModel{name: "k1", log: log, errs: []error{errors.New("googleapi: Error 403: permission denied")}}},
		"k2": {Chat: &fakeModel{name: "k2", log: log, errs: []error{errors.New("429"), errors.New("429")}}},
	}
	sleeper := &sleepRecorder{}
	client := newTestClient(t, models, testOptions(), sleeper)

	_, err := client.Generate(context.Background(), testMessages)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, Transient, genErr.Class)
	assert.Equal(t, 3, genErr.Attempts)
	assert.Equal(t, []string{"k1", "k2", "k2"}, log.snapshot())
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeper.delays)
}

func TestClient_Generate_AllCredentialsRejected(t *testing.T) {
	log := &callLog{}
	models := map[string]*Backend{
		"k1": {Chat: &fakeModel{name: "k1", log: log, errs: []error{errors.New("401 Unauthorized")}}},
		"k2": {Chat: &fakeModel{name: "k2", log: log, errs: []error{errors.New("API key not valid")}}},
	}
	sleeper := &sleepRecorder{}
	client := newTestClient(t, models, testOptions(), sleeper)

	_, err := client.Generate(context.Background(), testMessages)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, Configuration, genErr.Class)
	assert.Equal(t, 2, genErr.Attempts)
	assert.Equal(t, []string{"k1", "k2"}, log.snapshot())
	assert.Empty(t, sleeper.delays)
}

func TestClient_Generate_FallsBackToCompletion(t *testing.T) {
	log := &callLog{}
	chat := &fakeModel{name: "chat", log: log, errs: []error{errors.New("Model X is not a chat model")}}
	completion := &fakeModel{name: "completion", log: log, reply: "from completion"}
	client := newTestClient(t, map[string]*Backend{"k1": {Chat: chat, Completion: completion}}, testOptions(), &sleepRecorder{})

	text, err := client.Generate(context.Background(), testMessages)
	require.NoError(t, err)
	assert.Equal(t, "from completion", text)
	assert.Equal(t, []string{"chat", "completion"}, log.snapshot())

	require.Len(t, completion.messages, 1)
	require.Len(t, completion.messages[0], 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, completion.messages[0][0].Role)
}

func TestClient_Generate_NoFallbackWhenDisabled(t *testing.T) {
	log := &callLog{}
	chat := &fakeModel{name: "chat", log: log, errs: []error{errors.New("Model X is not a chat model")}}
	opts := testOptions()
	opts.Fallback = false
	client := newTestClient(t, map[string]*Backend{"k1": {Chat: chat}}, opts, &sleepRecorder{})

	_, err := client.Generate(context.Background(), testMessages)
	assert.Error(t, err)
	assert.Equal(t, []string{"chat"}, log.snapshot())
}

func TestClient_Generate_WaitsWhileModelLoads(t *testing.T) {
	log := &callLog{}
	models := map[string]*Backend{
		"k1": {Chat: &fakeModel{name: "k1", log: log, errs: []error{errors.New("503: model is currently loading")}}},
		"k2": {Chat: &fakeModel{name: "k2", log: log, reply: "warm"}},
	}
	sleeper := &sleepRecorder{}
	client := newTestClient(t, models, testOptions(), sleeper)

	text, err := client.Generate(context.Background(), testMessages)
	require.NoError(t, err)
	assert.Equal(t, "warm", text)
	assert.Equal(t, []time.Duration{10 * time.Second}, sleeper.delays)
}

func TestClient_Generate_EmptyReplyIsPermanent(t *testing.T) {
	log := &callLog{}
	client := newTestClient(t, map[string]*Backend{"k1": {Chat: &fakeModel{name: "k1", log: log, reply: "   "}}}, testOptions(), &sleepRecorder{})

	_, err := client.Generate(context.Background(), testMessages)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestClient_Generate_CanceledContext(t *testing.T) {
	log := &callLog{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := newTestClient(t, map[string]*Backend{"k1": {Chat: &fakeModel{name: "k1", log: log, errs: []error{errors.New("429")}}}}, testOptions(), &sleepRecorder{})

	_, err := client.Generate(ctx, testMessages)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Backoff(t *testing.T) {
	client := newTestClient(t, map[string]*Backend{"k1": {Chat: &fakeModel{name: "k1", log: &callLog{}}}}, testOptions(), &sleepRecorder{})

	assert.Equal(t, 2*time.Second, client.backoff(0))
	assert.Equal(t, 4*time.Second, client.backoff(1))
	assert.Equal(t, 16*time.Second, client.backoff(3))
	assert.Equal(t, 30*time.Second, client.backoff(4))
	assert.Equal(t, 30*time.Second, client.backoff(40))
}

func TestCleanCompletion(t *testing.T) {
	assert.Equal(t, "answer", cleanCompletion("<think>hmm</think>\n answer "))
	assert.Equal(t, "plain", cleanCompletion("plain"))
}
