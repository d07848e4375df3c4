package service

import (
	"testing"

	"quiz-ai-cache/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		start   int
		end     int
		wantErr bool
	}{
		{name: "Range", input: "1-10", start: 1, end: 10},
		{name: "Single", input: "5", start: 5, end: 5},
		{name: "Spaces", input: " 3 - 4 ", start: 3, end: 4},
		{name: "ZeroStart", input: "0-2", start: 0, end: 2},
		{name: "Reversed", input: "10-1", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
		{name: "Letters", input: "a-b", wantErr: true},
		{name: "Negative", input: "-5", wantErr: true},
		{name: "TrailingDash", input: "5-", wantErr: true},
		{name: "TooManyParts", input: "1-2-3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ParseRange(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.ErrInvalidInput, domain.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestExtractNumber(t *testing.T) {
	assert.Equal(t, 12, ExtractNumber("q12"))
	assert.Equal(t, 7, ExtractNumber("7"))
	assert.Equal(t, 102, ExtractNumber("pmp-1-02"))
	assert.Equal(t, 0, ExtractNumber("intro"))
	assert.Equal(t, 0, ExtractNumber(""))
	assert.Equal(t, 0, ExtractNumber("99999999999999999999999"))
}

func TestEnumerateWorkItems(t *testing.T) {
	questions := makeQuestions("q3", "q1", "q10", "intro", "q2")
	langs := []domain.Language{domain.LanguageVietnamese, domain.LanguageEnglish}

	items := EnumerateWorkItems(questions, 1, 3, langs, domain.AllContentTypes, false)
	require.Len(t, items, 3*2*2)

	var order []string
	for i, it := range items {
		assert.Equal(t, i+1, it.Seq)
		assert.False(t, it.Force)
		order = append(order, it.Key().String())
	}
	assert.Equal(t, []string{
		"q1/vi/theory", "q1/vi/explanation",
		"q2/vi/theory", "q2/vi/explanation",
		"q3/vi/theory", "q3/vi/explanation",
		"q1/en/theory", "q1/en/explanation",
		"q2/en/theory", "q2/en/explanation",
		"q3/en/theory", "q3/en/explanation",
	}, order)
}

func TestEnumerateWorkItems_Filters(t *testing.T) {
	questions := makeQuestions("1", "2", "3", "4", "5")

	t.Run("SubsetOfTypes", func(t *testing.T) {
		items := EnumerateWorkItems(questions, 2, 4, []domain.Language{domain.LanguageEnglish}, []domain.ContentType{domain.ContentExplanation}, true)
		require.Len(t, items, 3)
		for _, it := range items {
			assert.True(t, it.Force)
			assert.Equal(t, domain.ContentExplanation, it.Type)
		}
	})

	t.Run("DefaultsToAllLanguagesAndTypes", func(t *testing.T) {
		items := EnumerateWorkItems(questions, 1, 5, nil, nil, false)
		assert.Len(t, items, 5*len(domain.DefaultLanguages)*len(domain.AllContentTypes))
	})

	t.Run("NoMatchIsEmpty", func(t *testing.T) {
		assert.Empty(t, EnumerateWorkItems(questions, 100, 200, nil, nil, false))
	})
}

func TestFilterRange_UnnumberedIDs(t *testing.T) {
	questions := makeQuestions("q2", "intro", "q1", "99999999999999999999999")

	ids := func(qs []*domain.Question) []string {
		out := make([]string, 0, len(qs))
		for _, q := range qs {
			out = append(out, q.ID)
		}
		return out
	}

	assert.Equal(t, []string{"q1", "q2"}, ids(FilterRange(questions, 1, 5)))
	assert.Equal(t, []string{"intro", "99999999999999999999999", "q1"}, ids(FilterRange(questions, 0, 1)))
}
