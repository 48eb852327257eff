package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"questa-search/internal/cache"
	"questa-search/internal/config"
	"questa-search/internal/domain"
	"questa-search/internal/logger"

	"go.uber.org/zap"
)

// SearchService defines the question search and maintenance operations.
type SearchService interface {
	Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error)
	ListBySubject(ctx context.Context, subject domain.Subject, req domain.SearchRequest) (domain.SearchResult, error)
	Suggestions(ctx context.Context, query string, limit int) ([]string, error)
	GetQuestion(ctx context.Context, id string) (*domain.Question, error)
	CreateQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error)
	UpdateQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	ImportQuestions(ctx context.Context, questions []*domain.Question) (int, error)
	Health(ctx context.Context) HealthReport
}

// HealthReport is "up", "down" or "disabled" per dependency.
type HealthReport struct {
	Database string
	Cache    string
}

func (h HealthReport) Healthy() bool {
	return h.Database == "up"
}

type searchService struct {
	repo  domain.QuestionRepository
	tm    domain.TransactionManager
	cache domain.Cache
	ttls  config.CacheTTLConfig
}

// NewSearchService creates a SearchService. cache and tm may be nil.
func NewSearchService(
	repo domain.QuestionRepository,
	tm domain.TransactionManager,
	cache domain.Cache,
	ttls config.CacheTTLConfig,
) SearchService {
	if cache == nil {
		logger.Get().Warn("SearchService initialized without cache. Results will not be cached.")
	}
	return &searchService{repo: repo, tm: tm, cache: cache, ttls: ttls}
}

func (s *searchService) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	key := s.searchKey(ctx, req)
	if res, ok := s.cachedResult(ctx, key); ok {
		return res, nil
	}

	questions, hasMore, err := s.repo.Search(ctx, req)
	if err != nil {
		return domain.SearchResult{}, domain.NewInternalError("Failed to search questions", err)
	}
	if questions == nil {
		questions = []*domain.Question{}
	}
	res := domain.SearchResult{Questions: questions, HasMore: hasMore, Source: domain.SourceRemote}
	s.storeResult(ctx, key, res)
	return res, nil
}

// ListBySubject lists one subject newest first; free text and sort are ignored.
func (s *searchService) ListBySubject(ctx context.Context, subject domain.Subject, req domain.SearchRequest) (domain.SearchResult, error) {
	req.Filter.Subjects = []domain.Subject{subject}
	req.Filter.Query = ""
	req.Sort = domain.SortCreatedDesc
	return s.Search(ctx, req)
}

func (s *searchService) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	suggestions, err := s.repo.Suggestions(ctx, query, limit)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get suggestions", err)
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions, nil
}

func (s *searchService) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	key := cache.QuestionKey(id)
	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err == nil {
			var q domain.Question
			if jerr := json.Unmarshal([]byte(data), &q); jerr == nil {
				return &q, nil
			}
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Question cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	q, err := s.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get question", err)
	}
	if q == nil {
		return nil, domain.NewQuestionNotFoundError(id)
	}

	if s.cache != nil {
		if data, err := json.Marshal(q); err == nil {
			if err := s.cache.Set(ctx, key, string(data), s.ttls.Question); err != nil {
				logger.Get().Warn("Question cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return q, nil
}

func (s *searchService) CreateQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveQuestion(ctx, q); err != nil {
		return nil, domain.NewInternalError("Failed to save question", err)
	}
	s.invalidate(ctx, "")
	logger.Get().Info("Question created", zap.String("question_id", q.ID), zap.String("subject", string(q.Subject)))
	return q, nil
}

func (s *searchService) UpdateQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetQuestionByID(ctx, q.ID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get question", err)
	}
	if existing == nil {
		return nil, domain.NewQuestionNotFoundError(q.ID)
	}
	q.CreatedAt = existing.CreatedAt

	if err := s.repo.UpdateQuestion(ctx, q); err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to update question", err)
	}
	s.invalidate(ctx, q.ID)
	return q, nil
}

func (s *searchService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return domain.NewInternalError("Failed to delete question", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// ImportQuestions saves every question in one transaction. Nothing is saved
// when any question is invalid.
func (s *searchService) ImportQuestions(ctx context.Context, questions []*domain.Question) (int, error) {
	var invalid domain.ValidationErrors
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			var verrs domain.ValidationErrors
			if errors.As(err, &verrs) {
				for _, v := range verrs {
					v.Field = "questions[" + strconv.Itoa(i) + "]." + v.Field
					invalid = append(invalid, v)
				}
			}
		}
	}
	if len(invalid) > 0 {
		return 0, invalid
	}

	save := func(ctx context.Context) error {
		for _, q := range questions {
			if err := s.repo.SaveQuestion(ctx, q); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	if s.tm != nil {
		err = s.tm.WithTransaction(ctx, save)
	} else {
		err = save(ctx)
	}
	if err != nil {
		return 0, domain.NewInternalError("Failed to import questions", err)
	}
	s.invalidate(ctx, "")
	logger.Get().Info("Questions imported", zap.Int("count", len(questions)))
	return len(questions), nil
}

func (s *searchService) Health(ctx context.Context) HealthReport {
	report := HealthReport{Database: "up", Cache: "disabled"}
	if err := s.repo.Ping(ctx); err != nil {
		logger.Get().Error("Database health check failed", zap.Error(err))
		report.Database = "down"
	}
	if s.cache != nil {
		report.Cache = "up"
		if err := s.cache.Ping(ctx); err != nil {
			logger.Get().Warn("Cache health check failed", zap.Error(err))
			report.Cache = "down"
		}
	}
	return report
}

// searchKey returns "" when caching is off or the generation is unreadable.
func (s *searchService) searchKey(ctx context.Context, req domain.SearchRequest) string {
	if s.cache == nil {
		return ""
	}
	gen, err := s.cache.Get(ctx, cache.GenerationKey)
	if errors.Is(err, domain.ErrCacheMiss) {
		gen = "0"
	} else if err != nil {
		logger.Get().Warn("Search cache unavailable", zap.Error(err))
		return ""
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return cache.SearchPageKey(gen, payload)
}

func (s *searchService) cachedResult(ctx context.Context, key string) (domain.SearchResult, bool) {
	if key == "" {
		return domain.SearchResult{}, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Search cache read failed", zap.String("key", key), zap.Error(err))
		}
		return domain.SearchResult{}, false
	}
	var res domain.SearchResult
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		logger.Get().Warn("Discarding unreadable cached search", zap.String("key", key), zap.Error(err))
		return domain.SearchResult{}, false
	}
	logger.Get().Debug("Search cache hit", zap.String("key", key))
	return res, true
}

func (s *searchService) storeResult(ctx context.Context, key string, res domain.SearchResult) {
	if key == "" {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	ttl := s.ttls.SearchResults
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if err := s.cache.Set(ctx, key, string(data), ttl); err != nil {
		logger.Get().Warn("Search cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate bumps the search generation and drops the cached question, if any.
func (s *searchService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, cache.GenerationKey); err != nil {
		logger.Get().Warn("Failed to invalidate search cache", zap.Error(err))
	}
	if id != "" {
		if err := s.cache.Delete(ctx, cache.QuestionKey(id)); err != nil {
			logger.Get().Warn("Failed to invalidate question cache", zap.String("question_id", id), zap.Error(err))
		}
	}
}
