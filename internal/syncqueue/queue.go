// Package syncqueue holds question writes made while offline until they can be
// replayed against the remote server.
package syncqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"questa-search/internal/domain"
	"questa-search/internal/logger"
	"questa-search/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	QueueKey    = "questionSyncQueue"
	LastSyncKey = "lastSyncTimestamp"

	DefaultConcurrency = 4
)

// Status summarizes the queue for display.
type Status struct {
	Queued   int        `json:"queued_count"`
	LastSync *time.Time `json:"last_sync,omitempty"`
}

// FlushResult counts the outcome of one Flush.
type FlushResult struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Queue persists pending writes in a domain.LocalStore under QueueKey.
type Queue struct {
	store       domain.LocalStore
	concurrency int

	// mu guards the stored queue; flushMu allows one Flush at a time.
	mu      sync.Mutex
	flushMu sync.Mutex
}

func New(store domain.LocalStore, concurrency int) *Queue {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Queue{store: store, concurrency: concurrency}
}

// Enqueue records a pending write. An empty action is inferred: update when
// the question already has an id, create otherwise.
func (q *Queue) Enqueue(ctx context.Context, question *domain.Question, action domain.SyncAction) (domain.SyncQueueItem, error) {
	if question == nil {
		return domain.SyncQueueItem{}, domain.NewInvalidInputError("question is required")
	}
	if action == "" {
		action = domain.SyncUpdate
		if question.ID == "" {
			action = domain.SyncCreate
		}
	}
	switch action {
	case domain.SyncCreate:
		if question.ID == "" {
			question.ID = util.NewULID()
		}
	case domain.SyncUpdate, domain.SyncDelete:
		if question.ID == "" {
			return domain.SyncQueueItem{}, domain.NewInvalidInputError(fmt.Sprintf("%s requires a question id", action))
		}
	default:
		return domain.SyncQueueItem{}, domain.NewInvalidInputError(fmt.Sprintf("unknown sync action %q", action))
	}

	item := domain.SyncQueueItem{
		ID:       util.NewULID(),
		Action:   action,
		Question: *question,
		QueuedAt: time.Now().UTC(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	items, err := q.load(ctx)
	if err != nil {
		return domain.SyncQueueItem{}, err
	}
	if err := q.save(ctx, append(items, item)); err != nil {
		return domain.SyncQueueItem{}, err
	}
	logger.Get().Info("Question queued for sync",
		zap.String("question_id", question.ID), zap.String("action", string(action)))
	return item, nil
}

// Pending returns the queued items, oldest first.
func (q *Queue) Pending(ctx context.Context) ([]domain.SyncQueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

func (q *Queue) Status(ctx context.Context) (Status, error) {
	items, err := q.Pending(ctx)
	if err != nil {
		return Status{}, err
	}
	st := Status{Queued: len(items)}

	raw, err := q.store.GetItem(ctx, LastSyncKey)
	switch {
	case errors.Is(err, domain.ErrCacheMiss):
	case err != nil:
		return Status{}, err
	default:
		if t, perr := time.Parse(time.RFC3339Nano, raw); perr == nil {
			st.LastSync = &t
		}
	}
	return st, nil
}

// Flush replays every queued item against w. Items for the same question are
// replayed in queue order; different questions run concurrently, at most
// concurrency at a time. Items that succeed are removed. A failed item and the
// later items for its question stay for the next Flush and count as failed.
// Items enqueued while a Flush runs are kept.
func (q *Queue) Flush(ctx context.Context, w domain.QuestionWriter) (FlushResult, error) {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	items, err := q.Pending(ctx)
	if err != nil {
		return FlushResult{}, err
	}
	if len(items) == 0 {
		return FlushResult{}, nil
	}

	log := logger.Get()
	log.Info("Syncing queued items", zap.Int("count", len(items)))

	groups := groupByQuestion(items)
	ok := make([][]bool, len(groups))
	var g errgroup.Group
	g.SetLimit(q.concurrency)
	for i, group := range groups {
		ok[i] = make([]bool, len(group))
		g.Go(func() error {
			for j, item := range group {
				if err := replay(ctx, w, item); err != nil {
					log.Error("Sync failed for item",
						zap.String("item_id", item.ID),
						zap.String("question_id", item.Question.ID),
						zap.String("action", string(item.Action)),
						zap.Int("held_back", len(group)-j-1),
						zap.Error(err))
					return nil
				}
				ok[i][j] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	done := make(map[string]struct{}, len(items))
	var res FlushResult
	for i, group := range groups {
		for j, item := range group {
			if !ok[i][j] {
				res.Failed++
				continue
			}
			res.Successful++
			done[item.ID] = struct{}{}
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	current, err := q.load(ctx)
	if err != nil {
		return res, err
	}
	remaining := current[:0]
	for _, it := range current {
		if _, ok := done[it.ID]; !ok {
			remaining = append(remaining, it)
		}
	}
	if err := q.save(ctx, remaining); err != nil {
		return res, err
	}
	if err := q.store.SetItem(ctx, LastSyncKey, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return res, err
	}

	log.Info("Sync finished", zap.Int("successful", res.Successful), zap.Int("failed", res.Failed))
	return res, nil
}

// groupByQuestion splits items per question id, keeping queue order inside
// each group and ordering groups by first appearance.
func groupByQuestion(items []domain.SyncQueueItem) [][]domain.SyncQueueItem {
	index := make(map[string]int, len(items))
	var groups [][]domain.SyncQueueItem
	for _, it := range items {
		i, seen := index[it.Question.ID]
		if !seen {
			i = len(groups)
			index[it.Question.ID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], it)
	}
	return groups
}

func replay(ctx context.Context, w domain.QuestionWriter, item domain.SyncQueueItem) error {
	question := item.Question
	switch item.Action {
	case domain.SyncCreate:
		_, err := w.SaveQuestion(ctx, &question)
		return err
	case domain.SyncUpdate:
		_, err := w.UpdateQuestion(ctx, &question)
		return err
	case domain.SyncDelete:
		err := w.DeleteQuestion(ctx, question.ID)
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown sync action %q", item.Action)
	}
}

func (q *Queue) load(ctx context.Context) ([]domain.SyncQueueItem, error) {
	raw, err := q.store.GetItem(ctx, QueueKey)
	if errors.Is(err, domain.ErrCacheMiss) {
		return []domain.SyncQueueItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync queue: %w", err)
	}
	var items []domain.SyncQueueItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("sync queue is corrupt: %w", err)
	}
	return items, nil
}

func (q *Queue) save(ctx context.Context, items []domain.SyncQueueItem) error {
	if items == nil {
		items = []domain.SyncQueueItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return q.store.SetItem(ctx, QueueKey, string(data))
}
