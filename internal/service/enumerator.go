package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"quiz-ai-cache/internal/domain"
)

// ParseRange parses "start-end" or a single number n (meaning n-n).
func ParseRange(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	invalid := func() (int, int, error) {
		return 0, 0, domain.NewInvalidInputError(fmt.Sprintf("invalid range %q, expected <start>-<end> or <n>", s))
	}

	startStr, endStr, isRange := strings.Cut(s, "-")
	if !isRange {
		endStr = startStr
	}
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil || start < 0 {
		return invalid()
	}
	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil || end < 0 {
		return invalid()
	}
	if start > end {
		return 0, 0, domain.NewInvalidInputError(fmt.Sprintf("invalid range %q, start is greater than end", s))
	}
	return start, end, nil
}

// ExtractNumber concatenates the digits of a question id ("q12" -> 12).
// Ids without digits, or with too many, map to 0, so only a range starting
// at 0 selects them.
func ExtractNumber(id string) int {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// FilterRange returns the questions whose number lies in [start, end],
// sorted by number. Questions sharing a number keep their input order.
func FilterRange(questions []*domain.Question, start, end int) []*domain.Question {
	var matched []*domain.Question
	for _, q := range questions {
		if q == nil {
			continue
		}
		if n := ExtractNumber(q.ID); n >= start && n <= end {
			matched = append(matched, q)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return ExtractNumber(matched[i].ID) < ExtractNumber(matched[j].ID)
	})
	return matched
}

// EnumerateWorkItems expands matching questions into work items, language by
// language, then question by question, then content type. Seq numbers start at 1.
// An empty result means nothing matched.
func EnumerateWorkItems(
	questions []*domain.Question,
	start, end int,
	langs []domain.Language,
	types []domain.ContentType,
	force bool,
) []domain.WorkItem {
	if len(langs) == 0 {
		langs = domain.DefaultLanguages
	}
	if len(types) == 0 {
		types = domain.AllContentTypes
	}

	matched := FilterRange(questions, start, end)
	if len(matched) == 0 {
		return nil
	}

	items := make([]domain.WorkItem, 0, len(matched)*len(langs)*len(types))
	for _, lang := range langs {
		for _, q := range matched {
			for _, t := range types {
				items = append(items, domain.WorkItem{
					Seq:      len(items) + 1,
					Question: q,
					Language: lang,
					Type:     t,
					Force:    force,
				})
			}
		}
	}
	return items
}
