package domain

import (
	"context"
	"fmt"
	"strings"
)

// Language is the output language of a generated content piece.
type Language string

const (
	LanguageVietnamese Language = "vi"
	LanguageEnglish    Language = "en"
)

// DefaultLanguages is the language set used when none is requested.
var DefaultLanguages = []Language{LanguageVietnamese, LanguageEnglish}

// ParseLanguage normalises a language code.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageVietnamese:
		return LanguageVietnamese, nil
	case LanguageEnglish:
		return LanguageEnglish, nil
	}
	return "", NewInvalidInputError(fmt.Sprintf("unsupported language %q", s))
}

// ContentType is the kind of generated content.
type ContentType string

const (
	ContentTheory      ContentType = "theory"
	ContentExplanation ContentType = "explanation"
)

// AllContentTypes lists every content type in generation order.
var AllContentTypes = []ContentType{ContentTheory, ContentExplanation}

// ParseContentTypes accepts "theory", "explanation" or "both".
func ParseContentTypes(s string) ([]ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ContentTheory):
		return []ContentType{ContentTheory}, nil
	case string(ContentExplanation):
		return []ContentType{ContentExplanation}, nil
	case "both", "":
		return append([]ContentType(nil), AllContentTypes...), nil
	}
	return nil, NewInvalidInputError(fmt.Sprintf("unsupported content type %q", s))
}

// Question is an exam question as stored in the question table.
// Options keep their letter prefix, e.g. "A. Amazon S3".
type Question struct {
	ID             string
	Question       string
	Options        []string
	CorrectAnswer  string
	Topic          string
	DiscussionLink string
	IsMultiselect  bool
}

// QuestionRepository defines the interface for question persistence
type QuestionRepository interface {
	// ListQuestions returns every stored question in store order.
	ListQuestions(ctx context.Context) ([]*Question, error)

	// UpsertQuestions inserts or updates questions keyed by ID.
	UpsertQuestions(ctx context.Context, questions []*Question) error
}
