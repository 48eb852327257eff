// Package selector decides per call whether a query goes to the remote server
// or to the local fallback store.
package selector

import (
	"context"
	"time"

	"questa-search/internal/config"
	"questa-search/internal/domain"
	"questa-search/internal/logger"

	"go.uber.org/zap"
)

const (
	DefaultHealthTimeout = 2 * time.Second
	DefaultQueryTimeout  = 10 * time.Second
)

// Source answers read queries.
type Source interface {
	Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error)
	ListBySubject(ctx context.Context, subject domain.Subject, req domain.SearchRequest) (domain.SearchResult, error)
	Suggestions(ctx context.Context, query string, limit int) ([]string, error)
	GetQuestion(ctx context.Context, id string) (*domain.Question, error)
}

// RemoteSource is a Source that can report whether it is reachable.
type RemoteSource interface {
	Source
	Health(ctx context.Context) error
}

type Options struct {
	FallbackEnabled bool
	HealthTimeout   time.Duration
	QueryTimeout    time.Duration
}

// OptionsFromConfig copies the remote section of the configuration.
func OptionsFromConfig(cfg config.RemoteConfig) Options {
	return Options{
		FallbackEnabled: cfg.FallbackEnabled,
		HealthTimeout:   cfg.HealthTimeout,
		QueryTimeout:    cfg.QueryTimeout,
	}
}

// Selector routes each call to remote or local. No state is carried between
// calls: every call with fallback enabled checks health again.
type Selector struct {
	remote RemoteSource
	local  Source
	opts   Options
}

func New(remote RemoteSource, local Source, opts Options) *Selector {
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = DefaultHealthTimeout
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = DefaultQueryTimeout
	}
	return &Selector{remote: remote, local: local, opts: opts}
}

func (s *Selector) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	return route(ctx, s, "search",
		func(ctx context.Context) (domain.SearchResult, error) { return s.remote.Search(ctx, req) },
		func(ctx context.Context) (domain.SearchResult, error) { return s.local.Search(ctx, req) },
	)
}

func (s *Selector) ListBySubject(ctx context.Context, subject domain.Subject, req domain.SearchRequest) (domain.SearchResult, error) {
	return route(ctx, s, "list_by_subject",
		func(ctx context.Context) (domain.SearchResult, error) { return s.remote.ListBySubject(ctx, subject, req) },
		func(ctx context.Context) (domain.SearchResult, error) { return s.local.ListBySubject(ctx, subject, req) },
	)
}

func (s *Selector) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	return route(ctx, s, "suggestions",
		func(ctx context.Context) ([]string, error) { return s.remote.Suggestions(ctx, query, limit) },
		func(ctx context.Context) ([]string, error) { return s.local.Suggestions(ctx, query, limit) },
	)
}

// GetQuestion returns domain.ErrNotFound from the remote as is; a missing
// question is an answer, not an outage.
func (s *Selector) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	return route(ctx, s, "get_question",
		func(ctx context.Context) (*domain.Question, error) { return s.remote.GetQuestion(ctx, id) },
		func(ctx context.Context) (*domain.Question, error) { return s.local.GetQuestion(ctx, id) },
	)
}

func route[T any](ctx context.Context, s *Selector, op string, remote, local func(context.Context) (T, error)) (T, error) {
	if !s.opts.FallbackEnabled {
		return queryRemote(ctx, s.opts.QueryTimeout, remote)
	}

	log := logger.Get()

	hctx, cancel := context.WithTimeout(ctx, s.opts.HealthTimeout)
	err := s.remote.Health(hctx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			var zero T
			return zero, ctx.Err()
		}
		log.Warn("Remote health check failed, using local fallback",
			zap.String("operation", op), zap.Error(err))
		return local(ctx)
	}

	v, err := queryRemote(ctx, s.opts.QueryTimeout, remote)
	if err == nil || domain.IsNotFound(err) || ctx.Err() != nil {
		return v, err
	}
	log.Warn("Remote query failed, retrying against local fallback",
		zap.String("operation", op), zap.Error(err))
	return local(ctx)
}

func queryRemote[T any](ctx context.Context, timeout time.Duration, remote func(context.Context) (T, error)) (T, error) {
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return remote(qctx)
}
