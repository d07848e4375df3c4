package rest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"quiz-ai-cache/internal/domain"
)

// questionRow is a question as PostgREST returns it.
type questionRow struct {
	ID             flexibleID `json:"id"`
	Question       string     `json:"question"`
	Options        optionList `json:"options"`
	CorrectAnswer  string     `json:"correct_answer"`
	Topic          *string    `json:"topic,omitempty"`
	DiscussionLink *string    `json:"discussion_link,omitempty"`
	IsMultiselect  bool       `json:"is_multiselect"`
}

func (r *questionRow) toDomain() *domain.Question {
	q := &domain.Question{
		ID:            string(r.ID),
		Question:      r.Question,
		Options:       []string(r.Options),
		CorrectAnswer: r.CorrectAnswer,
		IsMultiselect: r.IsMultiselect,
	}
	if r.Topic != nil {
		q.Topic = *r.Topic
	}
	if r.DiscussionLink != nil {
		q.DiscussionLink = *r.DiscussionLink
	}
	return q
}

func fromDomainQuestion(q *domain.Question) questionRow {
	row := questionRow{
		ID:            flexibleID(q.ID),
		Question:      q.Question,
		Options:       optionList(q.Options),
		CorrectAnswer: q.CorrectAnswer,
		IsMultiselect: q.IsMultiselect,
	}
	if q.Topic != "" {
		row.Topic = &q.Topic
	}
	if q.DiscussionLink != "" {
		row.DiscussionLink = &q.DiscussionLink
	}
	return row
}

// cacheRow is one ai_cache row.
type cacheRow struct {
	QuestionID string `json:"question_id"`
	Language   string `json:"language"`
	Type       string `json:"type"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// flexibleID accepts both text and numeric id columns.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}

// optionList accepts a JSON array or a JSON array encoded as a string.
type optionList []string

func (o *optionList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		if encoded == "" {
			*o = nil
			return nil
		}
		data = []byte(encoded)
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("options are not a string array: %w", err)
	}
	*o = items
	return nil
}
