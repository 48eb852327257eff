package service

import (
	"context"
	"testing"
	"time"

	"questa-search/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, ttl time.Duration) string {
	t.Helper()
	claims := dto.AuthClaims{
		UserID:    "editor-1",
		TokenType: dto.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   "editor-1",
		},
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestTokenValidator(t *testing.T) {
	_, err := NewTokenValidator("")
	assert.Error(t, err)

	v, err := NewTokenValidator("test-secret")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Valid", func(t *testing.T) {
		claims, err := v.ValidateJWT(ctx, signToken(t, jwt.SigningMethodHS256, []byte("test-secret"), time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "editor-1", claims.UserID)
		assert.Equal(t, dto.TokenTypeAccess, claims.TokenType)
	})

	t.Run("Expired", func(t *testing.T) {
		_, err := v.ValidateJWT(ctx, signToken(t, jwt.SigningMethodHS256, []byte("test-secret"), -time.Minute))
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := v.ValidateJWT(ctx, signToken(t, jwt.SigningMethodHS256, []byte("other"), time.Hour))
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("WrongAlgorithm", func(t *testing.T) {
		_, err := v.ValidateJWT(ctx, signToken(t, jwt.SigningMethodHS512, []byte("test-secret"), time.Hour))
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := v.ValidateJWT(ctx, "x")
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})
}
