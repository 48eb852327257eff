// Package fallback serves searches from questions cached on the client when
// the remote server cannot be reached.
package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"questa-search/internal/adapter/legacy"
	"questa-search/internal/domain"
	"questa-search/internal/logger"
	"questa-search/internal/search"
	"questa-search/internal/util"

	"go.uber.org/zap"
)

// QuestionKeyPrefix prefixes per-question entries: question_{id}.
const QuestionKeyPrefix = "question_"

// ModeOffline marks entries written while the remote was unavailable.
const ModeOffline = "offline"

// SubjectKeys returns the storage keys checked for a subject, in priority order.
func SubjectKeys(subject domain.Subject) []string {
	s := string(subject)
	return []string{s + "_questions_backup", s + "Questions", s + "_questions"}
}

// BackupKey is where SaveBackup writes a subject's corpus.
func BackupKey(subject domain.Subject) string {
	return SubjectKeys(subject)[0]
}

// QuestionKey is the per-question storage key.
func QuestionKey(id string) string {
	return QuestionKeyPrefix + id
}

// LocalSource answers queries from a domain.LocalStore.
type LocalSource struct {
	store    domain.LocalStore
	subjects []domain.Subject
}

// NewLocalSource scans the known subjects.
func NewLocalSource(store domain.LocalStore) *LocalSource {
	return &LocalSource{store: store, subjects: domain.KnownSubjects()}
}

// Corpus loads every locally cached question. Per subject the first readable key
// wins; question_{id} entries are added on top and replace subject entries with
// the same id.
func (s *LocalSource) Corpus(ctx context.Context) ([]*domain.Question, error) {
	log := logger.Get()
	var corpus []*domain.Question
	index := make(map[string]int)

	add := func(q *domain.Question) {
		if q.ID != "" {
			if i, ok := index[q.ID]; ok {
				corpus[i] = q
				return
			}
			index[q.ID] = len(corpus)
		}
		corpus = append(corpus, q)
	}

	for _, subject := range s.subjects {
		for _, key := range SubjectKeys(subject) {
			raw, err := s.store.GetItem(ctx, key)
			if errors.Is(err, domain.ErrCacheMiss) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", key, err)
			}
			questions, skipped, err := legacy.DecodeQuestions([]byte(raw))
			if err != nil {
				log.Warn("Skipping unreadable local backup", zap.String("key", key), zap.Error(err))
				continue
			}
			if skipped > 0 {
				log.Warn("Skipped malformed local questions", zap.String("key", key), zap.Int("skipped", skipped))
			}
			for _, q := range questions {
				if q.Subject == "" {
					q.Subject = subject
				}
				add(q)
			}
			break
		}
	}

	keys, err := s.store.Keys(ctx, QuestionKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list local questions: %w", err)
	}
	for _, key := range keys {
		q, err := s.readQuestion(ctx, key)
		if err != nil {
			log.Warn("Skipping malformed local question", zap.String("key", key), zap.Error(err))
			continue
		}
		if q.ID == "" {
			q.ID = strings.TrimPrefix(key, QuestionKeyPrefix)
		}
		add(q)
	}
	return corpus, nil
}

func (s *LocalSource) readQuestion(ctx context.Context, key string) (*domain.Question, error) {
	raw, err := s.store.GetItem(ctx, key)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return legacy.DecodeQuestion(m)
}

func (s *LocalSource) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	corpus, err := s.Corpus(ctx)
	if err != nil {
		return domain.SearchResult{}, err
	}
	res := search.Run(corpus, req)
	res.Source = domain.SourceLocal
	return res, nil
}

// ListBySubject is Search restricted to one subject.
func (s *LocalSource) ListBySubject(ctx context.Context, subject domain.Subject, req domain.SearchRequest) (domain.SearchResult, error) {
	req.Filter.Subjects = []domain.Subject{subject}
	return s.Search(ctx, req)
}

func (s *LocalSource) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	corpus, err := s.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	return search.Suggest(corpus, query, limit), nil
}

// GetQuestion checks question_{id} before scanning the subject backups.
func (s *LocalSource) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	q, err := s.readQuestion(ctx, QuestionKey(id))
	if err == nil {
		if q.ID == "" {
			q.ID = id
		}
		return q, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		logger.Get().Warn("Unreadable local question", zap.String("id", id), zap.Error(err))
	}

	corpus, err := s.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	for _, q := range corpus {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, domain.NewQuestionNotFoundError(id)
}

type storedQuestion struct {
	*domain.Question
	SavedAt time.Time `json:"savedAt"`
	Mode    string    `json:"mode"`
}

// SaveQuestion writes q to question_{id}, assigning an id when q has none.
func (s *LocalSource) SaveQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	if q.ID == "" {
		q.ID = util.NewULID()
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	data, err := json.Marshal(storedQuestion{Question: q, SavedAt: now, Mode: ModeOffline})
	if err != nil {
		return nil, err
	}
	if err := s.store.SetItem(ctx, QuestionKey(q.ID), string(data)); err != nil {
		return nil, err
	}
	return q, nil
}

// RemoveQuestion deletes the question_{id} entry. Subject backups are left alone.
func (s *LocalSource) RemoveQuestion(ctx context.Context, id string) error {
	return s.store.RemoveItem(ctx, QuestionKey(id))
}

// SaveBackup replaces the subject backup with questions.
func (s *LocalSource) SaveBackup(ctx context.Context, subject domain.Subject, questions []*domain.Question) error {
	if questions == nil {
		questions = []*domain.Question{}
	}
	data, err := json.Marshal(map[string]interface{}{
		"questions": questions,
		"savedAt":   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.store.SetItem(ctx, BackupKey(subject), string(data))
}
