package llm

import (
	"context"
	"fmt"

	"quiz-ai-cache/internal/domain"
	"quiz-ai-cache/internal/prompt"
)

// Generator is satisfied by Client.
type Generator interface {
	Generate(ctx context.Context, msgs prompt.Messages) (string, error)
}

// ContentGenerator renders the prompt for a work item and asks the model for it.
type ContentGenerator struct {
	client  Generator
	profile prompt.Profile
}

// NewContentGenerator creates a domain.ContentGenerator for the given prompt profile.
func NewContentGenerator(client Generator, profile prompt.Profile) *ContentGenerator {
	return &ContentGenerator{client: client, profile: profile}
}

// GenerateContent implements domain.ContentGenerator
func (g *ContentGenerator) GenerateContent(ctx context.Context, item domain.WorkItem) (string, error) {
	msgs, err := prompt.Build(g.profile, item.Question, item.Language, item.Type)
	if err != nil {
		return "", err
	}
	text, err := g.client.Generate(ctx, msgs)
	if err != nil {
		return "", domain.NewGenerationError(fmt.Sprintf("failed to generate %s", item.Key()), err)
	}
	return text, nil
}

// Static assertion to ensure ContentGenerator implements domain.ContentGenerator
var _ domain.ContentGenerator = (*ContentGenerator)(nil)
