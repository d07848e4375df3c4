package llm

import (
	"context"
	"fmt"

	"quiz-ai-cache/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const huggingFaceRouterURL = "https://router.huggingface.co/v1"

var defaultModels = map[string]string{
	config.ProviderGoogleAI:    "gemini-2.0-flash",
	config.ProviderOpenAI:      "gpt-4o-mini",
	config.ProviderHuggingFace: "Qwen/Qwen2.5-72B-Instruct",
	config.ProviderOllama:      "llama3.1",
}

// Backend is the pair of models used for one credential.
// Completion serves the plain-prompt fallback; when nil, Chat is used for it.
type Backend struct {
	Chat       llms.Model
	Completion llms.Model
}

// ModelFactory builds the backend for one API key.
type ModelFactory func(ctx context.Context, apiKey string) (*Backend, error)

// NewModelFactory returns the factory for the configured provider.
func NewModelFactory(cfg config.LLMConfig) (ModelFactory, error) {
	model := ModelName(cfg)

	switch cfg.Provider {
	case config.ProviderGoogleAI:
		return func(ctx context.Context, apiKey string) (*Backend, error) {
			chat, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(model))
			if err != nil {
				return nil, fmt.Errorf("%w: googleai: %v", ErrInvalidCredential, err)
			}
			return &Backend{Chat: chat}, nil
		}, nil

	case config.ProviderOpenAI:
		return func(_ context.Context, apiKey string) (*Backend, error) {
			opts := []openai.Option{openai.WithToken(apiKey), openai.WithModel(model)}
			if cfg.BaseURL != "" {
				opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
			}
			chat, err := openai.New(opts...)
			if err != nil {
				return nil, fmt.Errorf("%w: openai: %v", ErrInvalidCredential, err)
			}
			return &Backend{Chat: chat}, nil
		}, nil

	case config.ProviderHuggingFace:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = huggingFaceRouterURL
		}
		return func(_ context.Context, apiKey string) (*Backend, error) {
			// The router speaks the OpenAI chat protocol; text generation goes to the inference API.
			chat, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model), openai.WithBaseURL(baseURL))
			if err != nil {
				return nil, fmt.Errorf("%w: huggingface chat: %v", ErrInvalidCredential, err)
			}
			completion, err := huggingface.New(huggingface.WithToken(apiKey), huggingface.WithModel(model))
			if err != nil {
				return nil, fmt.Errorf("%w: huggingface: %v", ErrInvalidCredential, err)
			}
			return &Backend{Chat: chat, Completion: completion}, nil
		}, nil

	case config.ProviderOllama:
		return func(_ context.Context, _ string) (*Backend, error) {
			opts := []ollama.Option{ollama.WithModel(model)}
			if cfg.BaseURL != "" {
				opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
			}
			chat, err := ollama.New(opts...)
			if err != nil {
				return nil, fmt.Errorf("%w: ollama: %v", ErrInvalidCredential, err)
			}
			return &Backend{Chat: chat}, nil
		}, nil
	}

	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}

// ModelName returns the model the provider will be asked for.
func ModelName(cfg config.LLMConfig) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	return defaultModels[cfg.Provider]
}
