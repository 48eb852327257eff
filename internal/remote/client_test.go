package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"questa-search/internal/config"
	"questa-search/internal/domain"
	"questa-search/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(config.RemoteConfig{BaseURL: srv.URL, Token: token}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(config.RemoteConfig{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestClient_Health(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/health", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		}, "")
		assert.NoError(t, c.Health(context.Background()))
	})

	t.Run("Unhealthy", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		}, "")
		err := c.Health(context.Background())
		var de *domain.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, domain.CodeRemoteUnavailable, de.Code)
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := NewClient(config.RemoteConfig{BaseURL: srv.URL})
		require.NoError(t, err)
		assert.Error(t, c.Health(context.Background()))
	})
}

func TestClient_Search(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search/questions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "coffee", q.Get("q"))
		assert.Equal(t, "english", q.Get("subjects"))
		assert.Equal(t, "relevance", q.Get("sort"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "10", q.Get("offset"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"questions": []map[string]interface{}{{"id": "e2", "subject": "english", "body": "coffee"}},
			"count":     1,
			"has_more":  true,
		})
	}, "secret")

	req := search.Normalize(search.RawQuery{Query: "coffee", Subjects: "english", Sort: "relevance", Limit: "5", Offset: "10"})
	res, err := c.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRemote, res.Source)
	assert.True(t, res.HasMore)
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "e2", res.Questions[0].ID)
}

func TestClient_ListBySubject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/questions", r.URL.Path)
		assert.Equal(t, "math", r.URL.Query().Get("subject"))
		assert.Empty(t, r.URL.Query().Get("subjects"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"questions": nil, "has_more": false})
	}, "")

	res, err := c.ListBySubject(context.Background(), domain.SubjectMath, search.Normalize(search.RawQuery{}))
	require.NoError(t, err)
	assert.NotNil(t, res.Questions)
	assert.Empty(t, res.Questions)
}

func TestClient_Suggestions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "co", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": []string{"Coffee order"}, "query": "co"})
	}, "")

	s, err := c.Suggestions(context.Background(), "co", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee order"}, s)
}

func TestClient_GetQuestion(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/api/questions/q1":
			writeJSON(w, http.StatusOK, map[string]interface{}{"question": map[string]interface{}{
				"id": "q1", "body": "b", "tags": []string{"grammar"}, "choices": []string{"a", "b"},
			}})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"code": "QUESTION_NOT_FOUND", "message": "Question not found"})
		}
	}, "")
	ctx := context.Background()

	t.Run("Memoized", func(t *testing.T) {
		q, err := c.GetQuestion(ctx, "q1")
		require.NoError(t, err)
		assert.Equal(t, "b", q.Body)
		_, err = c.GetQuestion(ctx, "q1")
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("CallerEditsStayLocal", func(t *testing.T) {
		q, err := c.GetQuestion(ctx, "q1")
		require.NoError(t, err)
		q.Body = "edited"
		q.Tags = append(q.Tags, "mine")
		q.Choices[0] = "changed"

		again, err := c.GetQuestion(ctx, "q1")
		require.NoError(t, err)
		assert.Equal(t, "b", again.Body)
		assert.Equal(t, []string{"grammar"}, again.Tags)
		assert.Equal(t, []string{"a", "b"}, again.Choices)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := c.GetQuestion(ctx, "missing")
		assert.True(t, domain.IsNotFound(err))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("DeleteEvicts", func(t *testing.T) {
		before := calls.Load()
		_ = c.DeleteQuestion(ctx, "q1")
		_, err := c.GetQuestion(ctx, "q1")
		require.NoError(t, err)
		assert.Equal(t, before+2, calls.Load())
	})
}

func TestClient_Writes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/api/questions", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var q domain.Question
			require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
			q.ID = "new"
			writeJSON(w, http.StatusCreated, map[string]interface{}{"question": q})
		case http.MethodPut:
			assert.Equal(t, "/api/questions/q1", r.URL.Path)
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"code": "VALIDATION_ERROR", "message": "Request validation failed",
			})
		case http.MethodDelete:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}, "")
	ctx := context.Background()

	saved, err := c.SaveQuestion(ctx, &domain.Question{Subject: domain.SubjectMath, Body: "1+1"})
	require.NoError(t, err)
	assert.Equal(t, "new", saved.ID)

	_, err = c.UpdateQuestion(ctx, &domain.Question{ID: "q1"})
	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.CodeValidation, de.Code)

	err = c.DeleteQuestion(ctx, "q1")
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.CodeRemoteUnavailable, de.Code)
}
