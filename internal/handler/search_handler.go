package handler

import (
	"net/url"
	"strconv"
	"strings"

	"questa-search/internal/config"
	"questa-search/internal/dto"
	"questa-search/internal/search"
	"questa-search/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultSuggestionLimit = 10
	MaxSuggestionLimit     = 20
)

// SearchHandler handles search HTTP requests
type SearchHandler struct {
	service         service.SearchService
	normalizer      search.Normalizer
	suggestionLimit int
}

// NewSearchHandler creates a new SearchHandler instance
func NewSearchHandler(svc service.SearchService, cfg config.SearchConfig) *SearchHandler {
	limit := cfg.SuggestionLimit
	if limit <= 0 || limit > MaxSuggestionLimit {
		limit = DefaultSuggestionLimit
	}
	return &SearchHandler{
		service:         svc,
		normalizer:      search.NewNormalizer(cfg.DefaultLimit, cfg.MaxLimit),
		suggestionLimit: limit,
	}
}

// SearchQuestions godoc
// @Summary Search questions
// @Description Filters, ranks and pages questions. Malformed parameters fall back to defaults.
// @Tags search
// @Produce json
// @Param q query string false "Free text query"
// @Param subjects query string false "Comma separated subjects"
// @Param difficulties query string false "Comma separated difficulties (1-5)"
// @Param types query string false "Comma separated question types"
// @Param tags query string false "Comma separated tags"
// @Param sort query string false "created_desc, created_asc, difficulty_asc, difficulty_desc or relevance"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Items to skip"
// @Success 200 {object} dto.SearchQuestionsResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /search/questions [get]
func (h *SearchHandler) SearchQuestions(c *fiber.Ctx) error {
	req := h.normalizer.Normalize(search.RawQueryFromValues(queryValues(c)))
	res, err := h.service.Search(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSearchQuestionsResponse(req, res))
}

// Suggestions godoc
// @Summary Autocomplete suggestions
// @Description Titles first, then tags, containing q. Queries shorter than 2 characters return nothing.
// @Tags search
// @Produce json
// @Param q query string true "Partial query"
// @Param limit query int false "Maximum suggestions (default 10, max 20)"
// @Success 200 {object} dto.SuggestionsResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /search/suggestions [get]
func (h *SearchHandler) Suggestions(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if len([]rune(query)) < search.MinSuggestionQuery {
		return c.JSON(dto.SuggestionsResponse{Suggestions: []string{}, Query: query})
	}

	limit := h.suggestionLimit
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = min(l, MaxSuggestionLimit)
	}

	suggestions, err := h.service.Suggestions(c.UserContext(), query, limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.SuggestionsResponse{Suggestions: suggestions, Query: query})
}

// queryValues copies the request query string into url.Values.
func queryValues(c *fiber.Ctx) url.Values {
	v := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		v.Add(string(key), string(value))
	})
	return v
}
