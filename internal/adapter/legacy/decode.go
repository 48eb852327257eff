// Package legacy reads question records written by older clients, which used
// several spellings for the same field and stored lists as JSON strings.
package legacy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"questa-search/internal/domain"

	"github.com/spf13/cast"
)

// ErrNoQuestionText is returned for records with neither a body nor a title.
var ErrNoQuestionText = errors.New("record has no question text")

var (
	bodyKeys      = []string{"body", "question", "question_text", "text"}
	answerKeys    = []string{"answer", "correctAnswer", "correct_answer", "expected"}
	createdKeys   = []string{"created_at", "createdAt", "savedAt"}
	updatedKeys   = []string{"updated_at", "updatedAt"}
	typeKeys      = []string{"type", "questionType", "question_type"}
	choiceKeys    = []string{"choices", "options"}
	topicKeys     = []string{"topic", "category"}
	difficultyKey = []string{"difficulty", "level"}
)

// DecodeQuestion normalizes one duck-typed record.
func DecodeQuestion(m map[string]interface{}) (*domain.Question, error) {
	q := &domain.Question{
		ID:          cast.ToString(first(m, "id")),
		Subject:     domain.Subject(strings.ToLower(cast.ToString(first(m, "subject")))),
		Topic:       cast.ToString(first(m, topicKeys...)),
		Difficulty:  difficulty(first(m, difficultyKey...)),
		Title:       cast.ToString(first(m, "title")),
		Body:        cast.ToString(first(m, bodyKeys...)),
		Tags:        stringList(first(m, "tags")),
		Choices:     stringList(first(m, choiceKeys...)),
		Answer:      cast.ToString(first(m, answerKeys...)),
		Explanation: cast.ToString(first(m, "explanation")),
		CreatedAt:   timestamp(first(m, createdKeys...)),
	}
	if q.Body == "" && q.Title == "" {
		return nil, ErrNoQuestionText
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	if len(q.Choices) == 0 {
		q.Choices = nil
	}

	if raw := cast.ToString(first(m, typeKeys...)); raw != "" {
		q.Type = domain.ParseQuestionType(raw)
	} else if len(q.Choices) > 0 {
		q.Type = domain.TypeMultipleChoice
	} else {
		q.Type = domain.TypeOpen
	}

	q.UpdatedAt = timestamp(first(m, updatedKeys...))
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = q.CreatedAt
	}
	return q, nil
}

// DecodeQuestions accepts a JSON array of records, an object with a
// "questions" array, or a single record. Records that cannot be decoded are
// skipped and counted.
func DecodeQuestions(data []byte) ([]*domain.Question, int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("invalid question payload: %w", err)
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		if list, ok := v["questions"].([]interface{}); ok {
			items = list
		} else {
			items = []interface{}{v}
		}
	default:
		return nil, 0, fmt.Errorf("invalid question payload: unexpected %T", raw)
	}

	questions := make([]*domain.Question, 0, len(items))
	skipped := 0
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			skipped++
			continue
		}
		q, err := DecodeQuestion(m)
		if err != nil {
			skipped++
			continue
		}
		questions = append(questions, q)
	}
	return questions, skipped, nil
}

// first returns the value of the first key present with a non-nil value.
func first(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func difficulty(v interface{}) int {
	if v == nil {
		return domain.MinDifficulty
	}
	d, err := cast.ToIntE(v)
	if err != nil {
		// "3.0" and similar
		f, ferr := cast.ToFloat64E(v)
		if ferr != nil {
			return domain.MinDifficulty
		}
		d = int(f)
	}
	return max(domain.MinDifficulty, min(domain.MaxDifficulty, d))
}

// stringList reads an array, a JSON-encoded array string, or a comma list.
func stringList(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "[") {
			var out []string
			if err := json.Unmarshal([]byte(s), &out); err == nil {
				return out
			}
			var mixed []interface{}
			if err := json.Unmarshal([]byte(s), &mixed); err == nil {
				return cast.ToStringSlice(mixed)
			}
		}
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		out, err := cast.ToStringSliceE(val)
		if err != nil {
			return nil
		}
		return out
	}
}

// Millisecond epochs are what browsers produce; anything above this is not seconds.
const msEpochThreshold = 1e11

func timestamp(v interface{}) time.Time {
	switch val := v.(type) {
	case nil:
		return time.Time{}
	case json.Number, float64, int64, int:
		n, err := cast.ToInt64E(val)
		if err != nil {
			f, ferr := cast.ToFloat64E(val)
			if ferr != nil {
				return time.Time{}
			}
			n = int64(f)
		}
		if n > msEpochThreshold {
			return time.UnixMilli(n).UTC()
		}
		return time.Unix(n, 0).UTC()
	default:
		t, err := cast.ToTimeE(val)
		if err != nil {
			return time.Time{}
		}
		return t.UTC()
	}
}
