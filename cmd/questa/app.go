package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"questa-search/internal/adapter/localstore"
	"questa-search/internal/config"
	"questa-search/internal/domain"
	"questa-search/internal/fallback"
	"questa-search/internal/history"
	"questa-search/internal/logger"
	"questa-search/internal/remote"
	"questa-search/internal/search"
	"questa-search/internal/selector"
	"questa-search/internal/syncqueue"

	"go.uber.org/zap"
)

// app holds the collaborators of one CLI invocation.
type app struct {
	cfg        *config.Config
	store      localstore.Store
	remote     *remote.Client
	local      *fallback.LocalSource
	selector   *selector.Selector
	history    *history.History
	queue      *syncqueue.Queue
	normalizer search.Normalizer
	jsonOutput bool
	out        io.Writer
}

// newApp wires the client side. A nil store opens the configured backend.
func newApp(ctx context.Context, cfg *config.Config, flags globalFlags, store localstore.Store, opts ...remote.Option) (*app, error) {
	if store == nil {
		var err error
		store, err = localstore.Open(ctx, cfg.LocalStore, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
	}

	client, err := remote.NewClient(cfg.Remote, opts...)
	if err != nil {
		store.Close()
		return nil, err
	}

	local := fallback.NewLocalSource(store)
	selOpts := selector.OptionsFromConfig(cfg.Remote)
	var src selector.RemoteSource = client
	if flags.offline {
		src = unreachable{}
		selOpts.FallbackEnabled = true
	}

	logger.Get().Debug("CLI initialized",
		zap.String("remote", cfg.Remote.BaseURL),
		zap.Bool("fallback", selOpts.FallbackEnabled),
		zap.Bool("offline", flags.offline))

	return &app{
		cfg:        cfg,
		store:      store,
		remote:     client,
		local:      local,
		selector:   selector.New(src, local, selOpts),
		history:    history.New(store),
		queue:      syncqueue.New(store, cfg.Sync.Concurrency),
		normalizer: search.NewNormalizer(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		jsonOutput: flags.jsonOutput,
		out:        os.Stdout,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Get().Warn("Failed to close local store", zap.Error(err))
	}
}

var errOffline = domain.NewRemoteUnavailableError(errors.New("offline mode"))

// unreachable stands in for the server under --offline so every call is
// answered locally.
type unreachable struct{}

func (unreachable) Health(context.Context) error { return errOffline }
func (unreachable) Search(context.Context, domain.SearchRequest) (domain.SearchResult, error) {
	return domain.SearchResult{}, errOffline
}
func (unreachable) ListBySubject(context.Context, domain.Subject, domain.SearchRequest) (domain.SearchResult, error) {
	return domain.SearchResult{}, errOffline
}
func (unreachable) Suggestions(context.Context, string, int) ([]string, error) {
	return nil, errOffline
}
func (unreachable) GetQuestion(context.Context, string) (*domain.Question, error) {
	return nil, errOffline
}
