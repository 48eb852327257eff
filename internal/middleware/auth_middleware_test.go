package middleware_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"questa-search/internal/dto"
	"questa-search/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

// ManualMockTokenValidator implements service.TokenValidator.
type ManualMockTokenValidator struct {
	ValidateJWTFunc func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

func (m *ManualMockTokenValidator) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if m.ValidateJWTFunc != nil {
		return m.ValidateJWTFunc(ctx, tokenString)
	}
	return nil, errors.New("ValidateJWTFunc not set on mock")
}

func claimsFor(userID, tokenType string) *dto.AuthClaims {
	return &dto.AuthClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func validatorFor(t *testing.T) *ManualMockTokenValidator {
	return &ManualMockTokenValidator{
		ValidateJWTFunc: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
			switch tokenString {
			case "valid_access_token":
				return claimsFor("user123", dto.TokenTypeAccess), nil
			case "valid_refresh_token":
				return claimsFor("user456", "refresh"), nil
			default:
				return nil, errors.New("invalid token")
			}
		},
	}
}

func TestProtected(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID interface{}
	}{
		{"No Auth Header", "", fiber.StatusUnauthorized, nil},
		{"Basic scheme", "Basic abc", fiber.StatusUnauthorized, nil},
		{"Lowercase bearer", "bearer valid_access_token", fiber.StatusOK, "user123"},
		{"Bearer No Token", "Bearer ", fiber.StatusUnauthorized, nil},
		{"Invalid Token", "Bearer invalid_token", fiber.StatusUnauthorized, nil},
		{"Refresh Token", "Bearer valid_refresh_token", fiber.StatusForbidden, nil},
		{"Valid Access Token", "Bearer valid_access_token", fiber.StatusOK, "user123"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			var userID interface{}
			app.Post("/api/questions", middleware.Protected(validatorFor(t)), func(c *fiber.Ctx) error {
				userID = c.Locals(middleware.EditorIDKey)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("POST", "/api/questions", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			resp, err := app.Test(req, -1)
			assert.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			assert.Equal(t, tc.expectedUserID, userID)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		expectedUserID interface{}
	}{
		{"No Auth Header", "", nil},
		{"Valid Access Token", "Bearer valid_access_token", "user123"},
		{"Invalid Token", "Bearer invalid_token", nil},
		{"Refresh Token", "Bearer valid_refresh_token", nil},
		{"Basic scheme", "Basic some_token", nil},
		{"Bearer No Token", "Bearer ", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			nextHandlerCalled := false
			var userID interface{}
			app.Get("/test_optional_auth", middleware.OptionalAuth(validatorFor(t)), func(c *fiber.Ctx) error {
				nextHandlerCalled = true
				userID = c.Locals(middleware.EditorIDKey)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/test_optional_auth", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			resp, err := app.Test(req, -1)
			assert.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.True(t, nextHandlerCalled, "Next handler was not called")
			assert.Equal(t, tc.expectedUserID, userID)
		})
	}
}

func TestAuthIfRequired(t *testing.T) {
	app := fiber.New()
	app.Post("/open", middleware.AuthIfRequired(nil, true), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Post("/optional", middleware.AuthIfRequired(validatorFor(t), false), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest("POST", "/open", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/optional", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
