package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"questa-search/internal/dto"
	"questa-search/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, target string, out interface{}) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func ids(res dto.SearchQuestionsResponse) []string {
	out := make([]string, len(res.Questions))
	for i, q := range res.Questions {
		out[i] = q.ID
	}
	return out
}

func generateTestJWTToken(t *testing.T) string {
	t.Helper()
	now := time.Now()
	claims := dto.AuthClaims{
		UserID:    "integration",
		TokenType: dto.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "integration",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}

func TestHealth(t *testing.T) {
	var out dto.HealthResponse
	require.Equal(t, fiber.StatusOK, get(t, "/api/health", &out))
	assert.Equal(t, "healthy", out.Status)
	assert.Equal(t, "up", out.Database)
	assert.Equal(t, "disabled", out.Cache)
}

func TestSearch_EmptyFilterReturnsEverything(t *testing.T) {
	var out dto.SearchQuestionsResponse
	require.Equal(t, fiber.StatusOK, get(t, "/api/search/questions", &out))
	assert.Equal(t, []string{"eng-4", "eng-2", "math-5", "math-3", "math-1"}, ids(out))
	assert.False(t, out.HasMore)
}

func TestSearch_SubjectFilter(t *testing.T) {
	for _, sort := range []string{"created_desc", "difficulty_asc", "difficulty_desc"} {
		var out dto.SearchQuestionsResponse
		require.Equal(t, fiber.StatusOK, get(t, "/api/search/questions?subjects=math&sort="+sort, &out))
		assert.ElementsMatch(t, []string{"math-1", "math-3", "math-5"}, ids(out), sort)
	}

	var asc, desc dto.SearchQuestionsResponse
	get(t, "/api/search/questions?subjects=math&sort=difficulty_asc", &asc)
	get(t, "/api/search/questions?subjects=math&sort=difficulty_desc", &desc)
	assert.Equal(t, []string{"math-1", "math-3", "math-5"}, ids(asc))
	assert.Equal(t, []string{"math-5", "math-3", "math-1"}, ids(desc))
}

func TestSearch_TextQueryNeedsLiteralMatch(t *testing.T) {
	var out dto.SearchQuestionsResponse
	require.Equal(t, fiber.StatusOK, get(t, "/api/search/questions?q=coffee&sort=relevance", &out))
	assert.Equal(t, []string{"eng-4"}, ids(out))
	assert.Equal(t, "coffee", out.Query)
}

func TestSearch_TagsAreCaseSensitive(t *testing.T) {
	var out dto.SearchQuestionsResponse
	get(t, "/api/search/questions?tags=TOEIC", &out)
	assert.Equal(t, []string{"eng-4"}, ids(out))

	get(t, "/api/search/questions?tags=toeic", &out)
	assert.Empty(t, out.Questions)
}

func TestSearch_PaginationHasMoreIsExact(t *testing.T) {
	var page dto.SearchQuestionsResponse
	get(t, "/api/search/questions?limit=2&offset=2", &page)
	assert.Equal(t, []string{"math-5", "math-3"}, ids(page))
	assert.True(t, page.HasMore)

	get(t, "/api/search/questions?limit=2&offset=3", &page)
	assert.Equal(t, []string{"math-3", "math-1"}, ids(page))
	assert.False(t, page.HasMore)

	get(t, "/api/search/questions?limit=2&offset=10", &page)
	assert.Empty(t, page.Questions)
	assert.False(t, page.HasMore)
}

func TestSuggestions(t *testing.T) {
	var out dto.SuggestionsResponse
	require.Equal(t, fiber.StatusOK, get(t, "/api/search/suggestions?q=fra", &out))
	assert.Equal(t, []string{"Adding fractions", "fractions"}, out.Suggestions)

	get(t, "/api/search/suggestions?q=f", &out)
	assert.Empty(t, out.Suggestions)
}

func TestListQuestions(t *testing.T) {
	var out dto.SearchQuestionsResponse
	require.Equal(t, fiber.StatusOK, get(t, "/api/questions?subject=english", &out))
	assert.Equal(t, []string{"eng-4", "eng-2"}, ids(out))
	assert.Equal(t, 50, out.Limit)
}

func TestGetQuestion(t *testing.T) {
	var out dto.QuestionResponse
	require.Equal(t, fiber.StatusOK, get(t, "/api/questions/math-1", &out))
	assert.Equal(t, []string{"3/4", "2/6"}, out.Question.Choices)

	var errResp middleware.ErrorResponse
	require.Equal(t, fiber.StatusNotFound, get(t, "/api/questions/nope", &errResp))
	assert.Equal(t, "QUESTION_NOT_FOUND", errResp.Code)
}

func TestWriteLifecycle(t *testing.T) {
	token := generateTestJWTToken(t)
	send := func(method, target string, body interface{}) *http.Response {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, target, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp := send(http.MethodPost, "/api/questions", dto.QuestionRequest{
		Subject: "chemistry", Difficulty: 2, Type: "open", Title: "Molar mass", Body: "Molar mass of H2O?", Tags: []string{"moles"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created dto.QuestionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	id := created.Question.ID
	require.NotEmpty(t, id)

	resp = send(http.MethodPut, "/api/questions/"+id, dto.QuestionRequest{
		Subject: "chemistry", Difficulty: 3, Type: "open", Title: "Molar mass", Body: "Molar mass of CO2?", Tags: []string{"moles"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var got dto.QuestionResponse
	require.Equal(t, fiber.StatusOK, get(t, "/api/questions/"+id, &got))
	assert.Equal(t, 3, got.Question.Difficulty)
	assert.Equal(t, "Molar mass of CO2?", got.Question.Body)

	resp = send(http.MethodDelete, "/api/questions/"+id, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, get(t, "/api/questions/"+id, nil))
	resp = send(http.MethodDelete, "/api/questions/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestWrite_RequiresToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/questions/math-1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
