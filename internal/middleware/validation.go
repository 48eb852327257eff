package middleware

import (
	"strings"

	"questa-search/internal/domain"
	"questa-search/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the parameter validators.
const (
	ValidatedIDKey      = "validated_id"
	ValidatedSubjectKey = "validated_subject"
)

// ValidationMiddleware rejects malformed path and query parameters before
// they reach the question handlers.
type ValidationMiddleware struct {
	validator *validation.Validator
}

func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{validator: validation.NewValidator()}
}

// ValidateQuestionID checks :id and stores the trimmed value under ValidatedIDKey.
func (vm *ValidationMiddleware) ValidateQuestionID() fiber.Handler {
	return param(ValidatedIDKey,
		func(c *fiber.Ctx) string { return c.Params("id") },
		vm.validator.ValidateQuestionID,
		strings.TrimSpace)
}

// ValidateSubject checks the subject query of the listing endpoint and
// stores it lower-cased under ValidatedSubjectKey.
func (vm *ValidationMiddleware) ValidateSubject() fiber.Handler {
	return param(ValidatedSubjectKey,
		func(c *fiber.Ctx) string { return c.Query("subject") },
		vm.validator.ValidateSubject,
		func(s string) string { return strings.ToLower(strings.TrimSpace(s)) })
}

func param(key string, read func(*fiber.Ctx) string, check func(string) domain.ValidationErrors, clean func(string) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := read(c)
		if errs := check(raw); len(errs) > 0 {
			return errs
		}
		c.Locals(key, clean(raw))
		return c.Next()
	}
}
