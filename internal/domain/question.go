package domain

import (
	"context"
	"slices"
	"strings"
	"time"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Subject identifies the study area a question belongs to.
type Subject string

const (
	SubjectMath      Subject = "math"
	SubjectEnglish   Subject = "english"
	SubjectChemistry Subject = "chemistry"
	SubjectPhysics   Subject = "physics"
	SubjectJapanese  Subject = "japanese"
)

// KnownSubjects lists the subjects whose local backups are scanned during fallback.
func KnownSubjects() []Subject {
	return []Subject{SubjectMath, SubjectEnglish, SubjectChemistry, SubjectPhysics, SubjectJapanese}
}

// QuestionType is the answer format of a question.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "mc"
	TypeOpen           QuestionType = "open"
	TypeFillBlank      QuestionType = "fill_blank"
	TypeEssay          QuestionType = "essay"
)

// ParseQuestionType maps the spellings seen in stored records to a QuestionType.
func ParseQuestionType(s string) QuestionType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mc", "multiple-choice", "multiple_choice", "choice":
		return TypeMultipleChoice
	case "fill_blank", "fill-blank", "fillblank", "blank":
		return TypeFillBlank
	case "essay", "composition":
		return TypeEssay
	case "open", "":
		return TypeOpen
	default:
		return QuestionType(strings.ToLower(strings.TrimSpace(s)))
	}
}

// Question is a single study item. The search layer never mutates it.
type Question struct {
	ID          string       `json:"id"`
	Subject     Subject      `json:"subject"`
	Topic       string       `json:"topic,omitempty"`
	Difficulty  int          `json:"difficulty"`
	Type        QuestionType `json:"type"`
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	Tags        []string     `json:"tags"`
	Choices     []string     `json:"choices,omitempty"`
	Answer      string       `json:"answer,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Clone returns a copy of q that shares no slices with it.
func (q *Question) Clone() *Question {
	if q == nil {
		return nil
	}
	c := *q
	c.Tags = slices.Clone(q.Tags)
	c.Choices = slices.Clone(q.Choices)
	return &c
}

// NewQuestion creates a new Question instance
func NewQuestion(subject Subject, qType QuestionType, title, body string, difficulty int) *Question {
	now := time.Now()
	return &Question{
		Subject:    subject,
		Type:       qType,
		Title:      title,
		Body:       body,
		Difficulty: difficulty,
		Tags:       []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate validates the question
func (q *Question) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(string(q.Subject)) == "" {
		errs = append(errs, NewMissingFieldError("subject"))
	}
	if strings.TrimSpace(string(q.Type)) == "" {
		errs = append(errs, NewMissingFieldError("type"))
	}
	if strings.TrimSpace(q.Body) == "" {
		errs = append(errs, NewMissingFieldError("body"))
	}
	if q.Difficulty < MinDifficulty || q.Difficulty > MaxDifficulty {
		errs = append(errs, NewOutOfRangeError("difficulty", q.Difficulty, MinDifficulty, MaxDifficulty))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidDifficulty reports whether d lies in the accepted range.
func ValidDifficulty(d int) bool {
	return d >= MinDifficulty && d <= MaxDifficulty
}

// QuestionRepository defines the interface for question persistence
type QuestionRepository interface {
	// Search returns one page of questions matching req plus whether more rows exist.
	Search(ctx context.Context, req SearchRequest) ([]*Question, bool, error)

	// Suggestions returns distinct titles and tags containing query.
	Suggestions(ctx context.Context, query string, limit int) ([]string, error)

	// GetQuestionByID returns nil, nil when no active question has the id.
	GetQuestionByID(ctx context.Context, id string) (*Question, error)

	SaveQuestion(ctx context.Context, q *Question) error
	UpdateQuestion(ctx context.Context, q *Question) error
	DeleteQuestion(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}
