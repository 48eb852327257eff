package search

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"questa-search/internal/domain"
)

// Match reports whether q satisfies every constraint of f.
func Match(q *domain.Question, f domain.Filter) bool {
	if len(f.Subjects) > 0 && !slices.Contains(f.Subjects, q.Subject) {
		return false
	}
	if len(f.Difficulties) > 0 && !slices.Contains(f.Difficulties, q.Difficulty) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, q.Type) {
		return false
	}
	if len(f.Tags) > 0 {
		serialized := SerializeTags(q.Tags)
		for _, tag := range f.Tags {
			if !strings.Contains(serialized, tag) {
				return false
			}
		}
	}
	if terms := Terms(f.Query); len(terms) > 0 && !containsAnyTerm(q, terms) {
		return false
	}
	return true
}

// Filter returns the questions of corpus that match f, in corpus order.
func Filter(corpus []*domain.Question, f domain.Filter) []*domain.Question {
	out := make([]*domain.Question, 0, len(corpus))
	for _, q := range corpus {
		if q != nil && Match(q, f) {
			out = append(out, q)
		}
	}
	return out
}

// SerializeTags renders tags the way they are stored in the tags column, so the
// in-process tag rule and the SQL LIKE rule see the same text.
func SerializeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tags); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func containsAnyTerm(q *domain.Question, terms []string) bool {
	title := strings.ToLower(q.Title)
	body := strings.ToLower(q.Body)
	for _, term := range terms {
		if strings.Contains(title, term) || strings.Contains(body, term) || anyTagContains(q.Tags, term) {
			return true
		}
	}
	return false
}

func anyTagContains(tags []string, term string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
