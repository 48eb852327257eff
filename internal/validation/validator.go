package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"questa-search/internal/domain"
	"questa-search/internal/dto"
)

const (
	MaxIDLength      = 64
	MaxSubjectLength = 50
	MaxTitleLength   = 500
	MaxBodyLength    = 10000
	MaxTags          = 20
	MaxTagLength     = 50
	MaxChoices       = 10
)

var (
	idPattern      = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	subjectPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
	knownTypes     = map[domain.QuestionType]bool{
		domain.TypeMultipleChoice: true,
		domain.TypeOpen:           true,
		domain.TypeFillBlank:      true,
		domain.TypeEssay:          true,
	}
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateQuestionID accepts ULIDs as well as the shorter ids of imported records.
func (v *Validator) ValidateQuestionID(id string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	id = strings.TrimSpace(id)
	if id == "" {
		return append(errors, domain.NewMissingFieldError("id"))
	}
	if len(id) > MaxIDLength || !idPattern.MatchString(id) {
		errors = append(errors, domain.NewInvalidFormatError("id", id))
	}
	return errors
}

func (v *Validator) ValidateSubject(subject string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return append(errors, domain.NewMissingFieldError("subject"))
	}
	if len(subject) > MaxSubjectLength || !subjectPattern.MatchString(strings.ToLower(subject)) {
		errors = append(errors, domain.NewInvalidFormatError("subject", subject))
	}
	return errors
}

// ValidateQuestionRequest checks a create or update payload.
func (v *Validator) ValidateQuestionRequest(req *dto.QuestionRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if req == nil {
		return append(errors, domain.NewMissingFieldError("body"))
	}

	if strings.TrimSpace(req.ID) != "" {
		errors = append(errors, v.ValidateQuestionID(req.ID)...)
	}
	errors = append(errors, v.ValidateSubject(req.Subject)...)

	if req.Difficulty < domain.MinDifficulty || req.Difficulty > domain.MaxDifficulty {
		errors = append(errors, domain.NewOutOfRangeError("difficulty", req.Difficulty, domain.MinDifficulty, domain.MaxDifficulty))
	}
	if !knownTypes[domain.ParseQuestionType(req.Type)] {
		errors = append(errors, domain.NewInvalidFormatError("type", req.Type))
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		errors = append(errors, domain.NewMissingFieldError("body"))
	} else if n := utf8.RuneCountInString(body); n > MaxBodyLength {
		errors = append(errors, domain.NewOutOfRangeError("body", n, 1, MaxBodyLength))
	}
	if n := utf8.RuneCountInString(req.Title); n > MaxTitleLength {
		errors = append(errors, domain.NewOutOfRangeError("title", n, 0, MaxTitleLength))
	}

	if len(req.Tags) > MaxTags {
		errors = append(errors, domain.NewOutOfRangeError("tags", len(req.Tags), 0, MaxTags))
	}
	for _, tag := range req.Tags {
		if strings.TrimSpace(tag) == "" || utf8.RuneCountInString(tag) > MaxTagLength {
			errors = append(errors, domain.NewInvalidFormatError("tags", tag))
			break
		}
	}
	if len(req.Choices) > MaxChoices {
		errors = append(errors, domain.NewOutOfRangeError("choices", len(req.Choices), 0, MaxChoices))
	}
	if domain.ParseQuestionType(req.Type) == domain.TypeMultipleChoice && len(req.Choices) < 2 {
		errors = append(errors, domain.NewOutOfRangeError("choices", len(req.Choices), 2, MaxChoices))
	}

	return errors
}
