package middleware

import (
	"strings"

	"questa-search/internal/dto"
	"questa-search/internal/logger"
	"questa-search/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EditorIDKey holds the user id of the token that authorized a question write.
const EditorIDKey = "editor_id"

type authFailure struct {
	status  int
	code    string
	message string
}

// authenticate returns the access-token claims of the request, or why there are none.
func authenticate(c *fiber.Ctx, validator service.TokenValidator) (*dto.AuthClaims, *authFailure) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return nil, &authFailure{fiber.StatusUnauthorized, "MISSING_AUTH_HEADER", "Authorization header is missing"}
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, &authFailure{fiber.StatusUnauthorized, "INVALID_AUTH_SCHEME", "Authorization scheme is not Bearer"}
	}
	if token = strings.TrimSpace(token); token == "" {
		return nil, &authFailure{fiber.StatusUnauthorized, "EMPTY_TOKEN", "Token is empty"}
	}

	claims, err := validator.ValidateJWT(c.UserContext(), token)
	if err != nil {
		return nil, &authFailure{fiber.StatusUnauthorized, "INVALID_TOKEN", err.Error()}
	}
	if claims.TokenType != dto.TokenTypeAccess {
		return nil, &authFailure{fiber.StatusForbidden, "INVALID_TOKEN_TYPE", "Question writes need an access token, got " + claims.TokenType}
	}
	return claims, nil
}

// Protected rejects question writes without a valid access token.
func Protected(validator service.TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, fail := authenticate(c, validator)
		if fail != nil {
			return c.Status(fail.status).JSON(ErrorResponse{Code: fail.code, Message: fail.message, Status: fail.status})
		}
		c.Locals(EditorIDKey, claims.UserID)
		return c.Next()
	}
}

// OptionalAuth records the editor when a valid access token is present and
// lets anonymous requests through.
func OptionalAuth(validator service.TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, fail := authenticate(c, validator)
		if fail != nil {
			if fail.code != "MISSING_AUTH_HEADER" {
				logger.Get().Debug("Ignoring unusable credentials", zap.String("reason", fail.code))
			}
			return c.Next()
		}
		c.Locals(EditorIDKey, claims.UserID)
		return c.Next()
	}
}

// AuthIfRequired is Protected when required is true and OptionalAuth otherwise.
// A nil validator disables auth entirely.
func AuthIfRequired(validator service.TokenValidator, required bool) fiber.Handler {
	switch {
	case validator == nil:
		return func(c *fiber.Ctx) error { return c.Next() }
	case required:
		return Protected(validator)
	default:
		return OptionalAuth(validator)
	}
}
