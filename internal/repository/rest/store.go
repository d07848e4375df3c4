// Package rest stores questions and generated content through a PostgREST (Supabase) endpoint.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quiz-ai-cache/internal/config"
	"quiz-ai-cache/internal/domain"
	"quiz-ai-cache/internal/util"

	"go.uber.org/zap"
)

const (
	pageSize        = 1000
	maxErrorBodyLen = 2048
)

// HTTPError is a non-2xx answer from the REST endpoint.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// HTTPStatusCode exposes the status for error classification.
func (e *HTTPError) HTTPStatusCode() int {
	return e.StatusCode
}

// Options configures a Store.
type Options struct {
	BaseURL        string
	APIKey         string
	QuestionsTable string
	CacheTable     string
	UpsertMode     string
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// Store implements domain.QuestionRepository and domain.ContentRepository over PostgREST.
type Store struct {
	baseURL        string
	apiKey         string
	questionsTable string
	cacheTable     string
	upsertMode     string
	timeout        time.Duration
	http           *http.Client
	logger         *zap.Logger
}

// NewStore validates opts and returns a Store.
func NewStore(opts Options, logger *zap.Logger) (*Store, error) {
	if opts.BaseURL == "" || opts.APIKey == "" {
		return nil, domain.NewConfigError("rest store needs a base url and an api key", nil)
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, domain.NewConfigError("invalid rest base url", err)
	}
	for _, table := range []string{opts.QuestionsTable, opts.CacheTable} {
		if !util.IsIdentifier(table) {
			return nil, domain.NewConfigError(fmt.Sprintf("invalid table name %q", table), nil)
		}
	}
	mode := opts.UpsertMode
	if mode == "" {
		mode = config.UpsertMerge
	}
	if mode != config.UpsertMerge && mode != config.UpsertReplace {
		return nil, domain.NewConfigError(fmt.Sprintf("invalid upsert mode %q", mode), nil)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Store{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		apiKey:         opts.APIKey,
		questionsTable: opts.QuestionsTable,
		cacheTable:     opts.CacheTable,
		upsertMode:     mode,
		timeout:        opts.Timeout,
		http:           client,
		logger:         logger,
	}, nil
}

// ListQuestions fetches every question, page by page.
func (s *Store) ListQuestions(ctx context.Context) ([]*domain.Question, error) {
	var questions []*domain.Question
	for offset := 0; ; offset += pageSize {
		query := url.Values{}
		query.Set("select", "*")
		query.Set("order", "id")
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("offset", strconv.Itoa(offset))

		var rows []questionRow
		if err := s.do(ctx, http.MethodGet, s.questionsTable, query, nil, "", &rows); err != nil {
			return nil, fmt.Errorf("failed to list questions: %w", err)
		}
		for i := range rows {
			questions = append(questions, rows[i].toDomain())
		}
		if len(rows) < pageSize {
			break
		}
	}
	s.logger.Debug("Fetched questions", zap.Int("count", len(questions)))
	return questions, nil
}

// UpsertQuestions inserts or updates questions keyed by id in one request.
func (s *Store) UpsertQuestions(ctx context.Context, questions []*domain.Question) error {
	if len(questions) == 0 {
		return nil
	}
	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, fromDomainQuestion(q))
	}
	query := url.Values{}
	query.Set("on_conflict", "id")
	if err := s.do(ctx, http.MethodPost, s.questionsTable, query, rows, "resolution=merge-duplicates,return=minimal", nil); err != nil {
		return fmt.Errorf("failed to upsert %d questions: %w", len(questions), err)
	}
	return nil
}

// GetContent returns the cached content for key, or domain.ErrCacheMiss.
func (s *Store) GetContent(ctx context.Context, key domain.CacheKey) (string, error) {
	query := keyFilter(key)
	query.Set("select", "content")
	query.Set("limit", "1")

	var rows []cacheRow
	if err := s.do(ctx, http.MethodGet, s.cacheTable, query, nil, "", &rows); err != nil {
		return "", fmt.Errorf("failed to read cache for %s: %w", key, err)
	}
	if len(rows) == 0 || rows[0].Content == "" {
		return "", domain.ErrCacheMiss
	}
	return rows[0].Content, nil
}

// SaveContent upserts entry. In merge mode a single request resolves the conflict on
// (question_id, language, type); in replace mode the old row is deleted first.
func (s *Store) SaveContent(ctx context.Context, entry domain.CacheEntry) error {
	row := cacheRow{
		QuestionID: entry.Key.QuestionID,
		Language:   string(entry.Key.Language),
		Type:       string(entry.Key.Type),
		Content:    entry.Content,
	}
	if !entry.CreatedAt.IsZero() {
		row.CreatedAt = entry.CreatedAt.UTC().Format(time.RFC3339)
	}

	if s.upsertMode == config.UpsertReplace {
		if err := s.do(ctx, http.MethodDelete, s.cacheTable, keyFilter(entry.Key), nil, "return=minimal", nil); err != nil {
			return fmt.Errorf("failed to delete cache row %s: %w", entry.Key, err)
		}
		if err := s.do(ctx, http.MethodPost, s.cacheTable, nil, []cacheRow{row}, "return=minimal", nil); err != nil {
			return fmt.Errorf("failed to insert cache row %s: %w", entry.Key, err)
		}
		return nil
	}

	query := url.Values{}
	query.Set("on_conflict", "question_id,language,type")
	if err := s.do(ctx, http.MethodPost, s.cacheTable, query, []cacheRow{row}, "resolution=merge-duplicates,return=minimal", nil); err != nil {
		return fmt.Errorf("failed to upsert cache row %s: %w", entry.Key, err)
	}
	return nil
}

func keyFilter(key domain.CacheKey) url.Values {
	query := url.Values{}
	query.Set("question_id", "eq."+key.QuestionID)
	query.Set("language", "eq."+string(key.Language))
	query.Set("type", "eq."+string(key.Type))
	return query
}

func (s *Store) do(ctx context.Context, method, table string, query url.Values, body interface{}, prefer string, out interface{}) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	path := "/rest/v1/" + table
	endpoint := s.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return &HTTPError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewParseError(fmt.Sprintf("failed to decode %s %s response", method, path), err)
	}
	return nil
}

// Static assertions
var (
	_ domain.QuestionRepository = (*Store)(nil)
	_ domain.ContentRepository  = (*Store)(nil)
)
