package domain

import (
	"context"
	"time"
)

// SyncAction is the pending remote write of a queued question.
type SyncAction string

const (
	SyncCreate SyncAction = "create"
	SyncUpdate SyncAction = "update"
	SyncDelete SyncAction = "delete"
)

// SyncQueueItem is a locally made change waiting for the remote store.
// It is discarded once the remote write succeeds.
type SyncQueueItem struct {
	ID       string     `json:"id"`
	Action   SyncAction `json:"action"`
	Question Question   `json:"question"`
	QueuedAt time.Time  `json:"queued_at"`
}

// QuestionWriter is the remote side of a sync.
type QuestionWriter interface {
	SaveQuestion(ctx context.Context, q *Question) (*Question, error)
	UpdateQuestion(ctx context.Context, q *Question) (*Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}
