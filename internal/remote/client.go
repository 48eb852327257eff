// Package remote is the HTTP client for the question search API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"questa-search/internal/config"
	"questa-search/internal/domain"
	"questa-search/internal/search"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/oauth2"
)

const (
	defaultQuestionCacheSize = 256
	defaultQuestionTTL       = 30 * time.Minute
	maxErrorBody             = 4 << 10
)

// Client talks to a questa-search server. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	questions  *expirable.LRU[string, *domain.Question]
}

type options struct {
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	questionTTL time.Duration
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient replaces the underlying client. A token source, if any, is
// layered on top of its transport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTokenSource authenticates every request with a bearer token from ts.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) { o.tokenSource = ts }
}

// WithQuestionTTL sets how long fetched questions are memoized.
func WithQuestionTTL(ttl time.Duration) Option {
	return func(o *options) { o.questionTTL = ttl }
}

// NewClient builds a Client for cfg.BaseURL. A non-empty cfg.Token is sent as
// a static bearer token unless WithTokenSource overrides it.
func NewClient(cfg config.RemoteConfig, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid remote base url %q", cfg.BaseURL)
	}

	o := options{questionTTL: defaultQuestionTTL}
	if cfg.Token != "" {
		o.tokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
	}
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	if o.tokenSource != nil {
		authed := *hc
		authed.Transport = &oauth2.Transport{Source: o.tokenSource, Base: hc.Transport}
		hc = &authed
	}

	size := cfg.QuestionCache
	if size <= 0 {
		size = defaultQuestionCacheSize
	}

	return &Client{
		baseURL:    base,
		httpClient: hc,
		questions:  expirable.NewLRU[string, *domain.Question](size, nil, o.questionTTL),
	}, nil
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health fails unless the server reports itself healthy.
func (c *Client) Health(ctx context.Context) error {
	var resp healthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "healthy" {
		return domain.NewRemoteUnavailableError(fmt.Errorf("server status %q", resp.Status))
	}
	return nil
}

type searchResponse struct {
	Questions []*domain.Question `json:"questions"`
	HasMore   bool               `json:"has_more"`
}

func (r searchResponse) result() domain.SearchResult {
	if r.Questions == nil {
		r.Questions = []*domain.Question{}
	}
	return domain.SearchResult{Questions: r.Questions, HasMore: r.HasMore, Source: domain.SourceRemote}
}

func (c *Client) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, "/api/search/questions", search.Encode(req), nil, &resp); err != nil {
		return domain.SearchResult{}, err
	}
	return resp.result(), nil
}

// ListBySubject calls the subject listing endpoint, which orders by creation time.
func (c *Client) ListBySubject(ctx context.Context, subject domain.Subject, req domain.SearchRequest) (domain.SearchResult, error) {
	q := search.Encode(req)
	q.Del("subjects")
	q.Del("sort")
	q.Del("q")
	q.Set("subject", string(subject))

	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, "/api/questions", q, nil, &resp); err != nil {
		return domain.SearchResult{}, err
	}
	return resp.result(), nil
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (c *Client) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp suggestionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/search/suggestions", q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Suggestions == nil {
		return []string{}, nil
	}
	return resp.Suggestions, nil
}

type questionResponse struct {
	Question *domain.Question `json:"question"`
}

// GetQuestion returns a memoized copy when one is fresh. Callers own the
// returned question; the memo keeps its own copy.
func (c *Client) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	if q, ok := c.questions.Get(id); ok {
		return q.Clone(), nil
	}
	var resp questionResponse
	err := c.do(ctx, http.MethodGet, "/api/questions/"+url.PathEscape(id), nil, nil, &resp)
	if domain.IsNotFound(err) {
		return nil, domain.NewQuestionNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}
	if resp.Question == nil {
		return nil, domain.NewQuestionNotFoundError(id)
	}
	c.questions.Add(id, resp.Question.Clone())
	return resp.Question, nil
}

func (c *Client) SaveQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	var resp questionResponse
	if err := c.do(ctx, http.MethodPost, "/api/questions", nil, q, &resp); err != nil {
		return nil, err
	}
	if resp.Question != nil && resp.Question.ID != "" {
		c.questions.Add(resp.Question.ID, resp.Question.Clone())
	}
	return resp.Question, nil
}

func (c *Client) UpdateQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	c.questions.Remove(q.ID)
	var resp questionResponse
	err := c.do(ctx, http.MethodPut, "/api/questions/"+url.PathEscape(q.ID), nil, q, &resp)
	if domain.IsNotFound(err) {
		return nil, domain.NewQuestionNotFoundError(q.ID)
	}
	if err != nil {
		return nil, err
	}
	return resp.Question, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	c.questions.Remove(id)
	err := c.do(ctx, http.MethodDelete, "/api/questions/"+url.PathEscape(id), nil, nil, nil)
	if domain.IsNotFound(err) {
		return domain.NewQuestionNotFoundError(id)
	}
	return err
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends one request. Transport failures and 5xx responses come back as
// REMOTE_UNAVAILABLE; 4xx responses keep the server's error code.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewRemoteUnavailableError(fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(method, path, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewRemoteUnavailableError(fmt.Errorf("%s %s: invalid response: %w", method, path, err))
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var e errorResponse
	_ = json.Unmarshal(data, &e)
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	cause := fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewError(domain.CodeNotFound, e.Message, cause)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.NewError(domain.CodeUnauthorized, e.Message, cause)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		code := domain.ErrorCode(e.Code)
		if code == "" {
			code = domain.CodeInvalidInput
		}
		return domain.NewError(code, e.Message, cause)
	default:
		return domain.NewRemoteUnavailableError(cause)
	}
}
