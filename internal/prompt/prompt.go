// Package prompt builds the system and user messages sent to the language model.
package prompt

import (
	"fmt"
	"strings"

	"quiz-ai-cache/internal/domain"
)

// Profile selects the exam domain the prompts are written for.
type Profile string

const (
	ProfileAWS Profile = "aws"
	ProfilePMP Profile = "pmp"
)

// ParseProfile validates a profile name.
func ParseProfile(s string) (Profile, error) {
	switch Profile(strings.ToLower(strings.TrimSpace(s))) {
	case ProfileAWS:
		return ProfileAWS, nil
	case ProfilePMP:
		return ProfilePMP, nil
	}
	return "", domain.NewInvalidInputError(fmt.Sprintf("unknown prompt profile %q", s))
}

// Messages is a chat-style prompt.
type Messages struct {
	System string
	User   string
}

// Build renders the prompt for one question, language and content type.
func Build(profile Profile, q *domain.Question, lang domain.Language, ctype domain.ContentType) (Messages, error) {
	if q == nil {
		return Messages{}, domain.NewInvalidInputError("question is nil")
	}
	options := FormatOptions(q.Options)

	switch profile {
	case ProfileAWS:
		switch ctype {
		case domain.ContentTheory:
			return Messages{System: awsSystem, User: awsTheory(q.Question, options, lang)}, nil
		case domain.ContentExplanation:
			return Messages{System: awsSystem, User: awsExplanation(q.Question, options, q.CorrectAnswer, lang)}, nil
		}
	case ProfilePMP:
		switch ctype {
		case domain.ContentTheory:
			return Messages{System: pmpSystem, User: pmpTheory(q.Question, options, lang)}, nil
		case domain.ContentExplanation:
			return Messages{System: pmpSystem, User: pmpExplanation(q.Question, options, q.CorrectAnswer, lang)}, nil
		}
	default:
		return Messages{}, domain.NewInvalidInputError(fmt.Sprintf("unknown prompt profile %q", profile))
	}
	return Messages{}, domain.NewInvalidInputError(fmt.Sprintf("unknown content type %q", ctype))
}

// FormatOptions renders options one per line as "A. text", replacing an existing
// matching letter prefix so stored and bare options format the same way.
func FormatOptions(options []string) string {
	lines := make([]string, 0, len(options))
	for i, opt := range options {
		label := optionLabel(i)
		opt = strings.TrimSpace(opt)
		if rest, ok := strings.CutPrefix(opt, label+"."); ok {
			opt = strings.TrimSpace(rest)
		}
		lines = append(lines, label+". "+opt)
	}
	return strings.Join(lines, "\n")
}

// CorrectOptionText returns the text of the options named by answer, e.g. "B" or "AC".
// Multiple answers are joined with "; ". It returns "N/A" when no option matches.
func CorrectOptionText(formattedOptions, answer string) string {
	var texts []string
	for _, letter := range strings.ToUpper(strings.TrimSpace(answer)) {
		prefix := string(letter) + ". "
		for _, line := range strings.Split(formattedOptions, "\n") {
			if rest, ok := strings.CutPrefix(line, prefix); ok {
				texts = append(texts, rest)
				break
			}
		}
	}
	if len(texts) == 0 {
		return "N/A"
	}
	return strings.Join(texts, "; ")
}

func optionLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("%d", i+1)
}
