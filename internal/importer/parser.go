// Package importer turns scraped exam-question markdown into domain questions.
package importer

import (
	"fmt"
	"regexp"
	"strings"

	"quiz-ai-cache/internal/domain"
)

// DefaultDelimiter separates question blocks in scraped exports.
var DefaultDelimiter = strings.Repeat("-", 40)

var (
	headingPattern   = regexp.MustCompile(`## Exam .* question (\d+) discussion`)
	suggestedPattern = regexp.MustCompile(`Suggested Answer:\s+([A-Z]+)`)
	officialPattern  = regexp.MustCompile(`\*\*Answer:\s+([A-Z]+)\*\*`)
	topicPattern     = regexp.MustCompile(`Topic #:\s+(\d+)`)
	linkPattern      = regexp.MustCompile(`\[View on ExamTopics\]\((.*?)\)`)
	optionPattern    = regexp.MustCompile(`^[A-F]\.\s+`)
)

// metadataPrefixes are page chrome lines dropped from the question body.
var metadataPrefixes = []string{
	"Question #",
	"Topic #",
	"Exam question from",
	"Amazon's",
	"AWS Certified",
	"Suggested Answer:",
	"## Exam",
}

const unknownTopic = "Unknown"

// Skipped describes a block that could not be turned into a question.
type Skipped struct {
	Block  int
	ID     string
	Reason string
}

func (s Skipped) String() string {
	if s.ID == "" {
		return fmt.Sprintf("block %d: %s", s.Block, s.Reason)
	}
	return fmt.Sprintf("block %d (question %s): %s", s.Block, s.ID, s.Reason)
}

// Parser splits a document on a delimiter line and parses each block.
type Parser struct {
	delimiter string
}

// NewParser creates a parser; an empty delimiter selects DefaultDelimiter.
func NewParser(delimiter string) *Parser {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return &Parser{delimiter: delimiter}
}

// Parse parses markdown with the default delimiter.
func Parse(markdown string) ([]*domain.Question, []Skipped) {
	return NewParser("").Parse(markdown)
}

// Parse returns the questions found in markdown, in document order,
// plus the blocks it had to drop.
func (p *Parser) Parse(markdown string) ([]*domain.Question, []Skipped) {
	var (
		questions []*domain.Question
		skipped   []Skipped
	)

	for i, block := range strings.Split(markdown, p.delimiter) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		q, reason := parseBlock(block)
		if reason != "" {
			s := Skipped{Block: i + 1, Reason: reason}
			if q != nil {
				s.ID = q.ID
			}
			skipped = append(skipped, s)
			continue
		}
		questions = append(questions, q)
	}
	return questions, skipped
}

// parseBlock returns the parsed question or a non-empty reason it was dropped.
// The partially parsed question is returned with the reason when the id is known.
func parseBlock(block string) (*domain.Question, string) {
	heading := headingPattern.FindStringSubmatch(block)
	if heading == nil {
		return nil, "no question heading"
	}
	q := &domain.Question{ID: heading[1], Topic: unknownTopic}

	lines := strings.Split(block, "\n")

	optStart := len(lines)
	for i, line := range lines {
		if optionPattern.MatchString(strings.TrimSpace(line)) {
			optStart = i
			break
		}
	}
	for _, line := range lines[optStart:] {
		line = strings.TrimSpace(line)
		if optionPattern.MatchString(line) {
			q.Options = append(q.Options, line)
		}
	}

	// The body starts after the "[All <exam> Questions]" breadcrumb when present.
	metaEnd := 0
	for i, line := range lines[:optStart] {
		if strings.Contains(line, "[All ") {
			metaEnd = i + 1
			break
		}
	}
	var body []string
	for _, line := range lines[metaEnd:optStart] {
		s := strings.TrimSpace(line)
		if s == "" || hasAnyPrefix(s, metadataPrefixes) {
			continue
		}
		body = append(body, s)
	}
	q.Question = strings.Join(body, "\n")
	q.IsMultiselect = strings.Contains(q.Question, "(Choose two") || strings.Contains(q.Question, "(Choose three")

	if m := suggestedPattern.FindStringSubmatch(block); m != nil {
		q.CorrectAnswer = m[1]
	} else if m := officialPattern.FindStringSubmatch(block); m != nil {
		q.CorrectAnswer = m[1]
	}
	if m := topicPattern.FindStringSubmatch(block); m != nil {
		q.Topic = m[1]
	}
	if m := linkPattern.FindStringSubmatch(block); m != nil {
		q.DiscussionLink = m[1]
	}

	switch {
	case q.CorrectAnswer == "":
		return q, "no answer marker"
	case len(q.Options) < 2:
		return q, fmt.Sprintf("only %d options", len(q.Options))
	}
	return q, ""
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
