package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Class is the retry category of a generation error.
type Class int

const (
	// Permanent errors fail the work item immediately.
	Permanent Class = iota
	// Transient errors rotate to the next credential and back off.
	Transient
	// Configuration errors mean the credential or endpoint is unusable.
	Configuration
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case Configuration:
		return "configuration"
	default:
		return "permanent"
	}
}

var (
	// ErrCredentialsExhausted is wrapped when every credential failed at every retry depth.
	ErrCredentialsExhausted = errors.New("all credentials exhausted")
	// ErrEmptyCompletion is returned when the provider answers with no text.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrInvalidCredential is wrapped around provider construction failures.
	ErrInvalidCredential = errors.New("invalid credential")
)

var transientSignals = []string{
	"quota",
	"rate limit",
	"rate_limit",
	"ratelimit",
	"rate-limit",
	"too many requests",
	"resource_exhausted",
	"resource has been exhausted",
	"loading",
	"overloaded",
	"timeout",
	"timed out",
	"deadline exceeded",
	"temporarily",
	"unavailable",
	"connection reset",
	"connection refused",
	"eof",
}

var loadingSignals = []string{"loading", "currently loading", "overloaded"}

var configurationSignals = []string{
	"api key",
	"api_key",
	"unauthorized",
	"permission denied",
	"permission_denied",
	"unauthenticated",
	"invalid token",
}

var (
	// statusPattern finds a status code reported as "status code: 400", "Error 429" or a leading "503 ...".
	statusPattern = regexp.MustCompile(`(?i)(?:^|\bstatus code|\bstatus|\berror|\bcode|\bhttp)[\s:=]*(\d{3})\b`)
	// statusTokenPattern matches retry-relevant codes standing alone in the message.
	statusTokenPattern = regexp.MustCompile(`\b(401|403|408|429|5\d\d)\b`)
)

var chatUnsupportedSignals = []string{"not a chat model", "invalid_request_error", "mn-404"}

// Classify maps a provider error onto a retry class by its typed causes first,
// then by well-known substrings of the provider message.
func Classify(err error) Class {
	if err == nil {
		return Permanent
	}
	if errors.Is(err, context.Canceled) {
		return Permanent
	}
	if errors.Is(err, ErrInvalidCredential) {
		return Configuration
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}
	var httpErr interface{ HTTPStatusCode() int }
	if errors.As(err, &httpErr) {
		if class, ok := classifyStatus(httpErr.HTTPStatusCode()); ok {
			return class
		}
	}

	msg := strings.ToLower(err.Error())
	if code, ok := messageStatus(msg); ok {
		if class, ok := classifyStatus(code); ok {
			return class
		}
	}
	if containsAny(msg, configurationSignals) {
		return Configuration
	}
	if containsAny(msg, transientSignals) {
		return Transient
	}
	if m := statusTokenPattern.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		class, _ := classifyStatus(code)
		return class
	}
	return Permanent
}

// messageStatus extracts the HTTP status a provider embedded in its error text.
// Numbers elsewhere in the message, such as token counts, are not status codes.
func messageStatus(msg string) (int, bool) {
	m := statusPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	code, err := strconv.Atoi(m[1])
	if err != nil || code < 100 || code > 599 {
		return 0, false
	}
	return code, true
}

func classifyStatus(code int) (Class, bool) {
	switch {
	case code == 401 || code == 403:
		return Configuration, true
	case code == 408 || code == 429 || code >= 500:
		return Transient, true
	case code >= 400:
		return Permanent, true
	}
	return Permanent, false
}

// IsLoading reports whether the provider said the model is still warming up.
func IsLoading(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if code, ok := messageStatus(msg); ok && code == 503 {
		return true
	}
	return containsAny(msg, loadingSignals)
}

// IsChatUnsupported reports whether the model rejected the chat protocol,
// in which case a plain completion call may still work.
func IsChatUnsupported(err error) bool {
	return err != nil && containsAny(strings.ToLower(err.Error()), chatUnsupportedSignals)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// GenerationError is the terminal error of one Generate call.
type GenerationError struct {
	Class    Class
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s) after %d attempt(s): %v", e.Class, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
