// Package history remembers recent search queries in the local store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"questa-search/internal/domain"
)

const (
	Key        = "searchHistory"
	MaxEntries = 10
)

type Entry struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// History keeps the most recent distinct queries, newest first.
type History struct {
	store domain.LocalStore
	mu    sync.Mutex
}

func New(store domain.LocalStore) *History {
	return &History{store: store}
}

// Add moves query to the front. Blank queries are ignored.
func (h *History) Add(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	entries, err := h.load(ctx)
	if err != nil {
		return err
	}

	out := make([]Entry, 0, MaxEntries)
	out = append(out, Entry{Query: query, Timestamp: time.Now().UTC()})
	for _, e := range entries {
		if e.Query != query && len(out) < MaxEntries {
			out = append(out, e)
		}
	}
	return h.save(ctx, out)
}

func (h *History) List(ctx context.Context) ([]Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.RemoveItem(ctx, Key)
}

// load treats an unreadable history as empty; it is only a convenience.
func (h *History) load(ctx context.Context) ([]Entry, error) {
	raw, err := h.store.GetItem(ctx, Key)
	if errors.Is(err, domain.ErrCacheMiss) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read search history: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return []Entry{}, nil
	}
	return entries, nil
}

func (h *History) save(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return h.store.SetItem(ctx, Key, string(data))
}
