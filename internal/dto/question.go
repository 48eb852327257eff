package dto

import (
	"strings"
	"time"

	"questa-search/internal/domain"
)

// SearchQuestionsResponse is one page of search results.
// @Description Search results page
type SearchQuestionsResponse struct {
	Questions []*domain.Question `json:"questions"`
	Count     int                `json:"count"`
	HasMore   bool               `json:"has_more"`
	Query     string             `json:"query"`
	Sort      string             `json:"sort"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// NewSearchQuestionsResponse echoes the normalized request next to the page.
func NewSearchQuestionsResponse(req domain.SearchRequest, res domain.SearchResult) SearchQuestionsResponse {
	questions := res.Questions
	if questions == nil {
		questions = []*domain.Question{}
	}
	return SearchQuestionsResponse{
		Questions: questions,
		Count:     len(questions),
		HasMore:   res.HasMore,
		Query:     req.Filter.Query,
		Sort:      string(req.Sort),
		Limit:     req.Limit,
		Offset:    req.Offset,
	}
}

// SuggestionsResponse lists autocomplete candidates.
// @Description Autocomplete suggestions
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Query       string   `json:"query"`
}

// QuestionResponse wraps a single question.
// @Description Single question
type QuestionResponse struct {
	Question *domain.Question `json:"question"`
}

// QuestionRequest is the body of create and update calls. It accepts the same
// shape the API returns, so a fetched question can be sent back unchanged.
// @Description Question payload for create and update
type QuestionRequest struct {
	ID          string    `json:"id,omitempty"`
	Subject     string    `json:"subject"`
	Topic       string    `json:"topic,omitempty"`
	Difficulty  int       `json:"difficulty"`
	Type        string    `json:"type"`
	Title       string    `json:"title,omitempty"`
	Body        string    `json:"body"`
	Tags        []string  `json:"tags,omitempty"`
	Choices     []string  `json:"choices,omitempty"`
	Answer      string    `json:"answer,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// ToDomain trims text fields and resolves type aliases.
func (r *QuestionRequest) ToDomain() *domain.Question {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Question{
		ID:          strings.TrimSpace(r.ID),
		Subject:     domain.Subject(strings.ToLower(strings.TrimSpace(r.Subject))),
		Topic:       strings.TrimSpace(r.Topic),
		Difficulty:  r.Difficulty,
		Type:        domain.ParseQuestionType(r.Type),
		Title:       strings.TrimSpace(r.Title),
		Body:        strings.TrimSpace(r.Body),
		Tags:        tags,
		Choices:     r.Choices,
		Answer:      r.Answer,
		Explanation: r.Explanation,
		CreatedAt:   r.CreatedAt,
	}
}

// HealthResponse reports server and dependency status.
// @Description Health check result
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Database  string    `json:"database"`
	Cache     string    `json:"cache"`
}
