package search

import (
	"strings"

	"questa-search/internal/domain"
)

// Paginate returns seq[offset:offset+limit], clamped to seq. hasMore is exact:
// it is true only when items exist past the returned page.
func Paginate[T any](seq []T, limit, offset int) ([]T, bool) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(seq) {
		return []T{}, false
	}
	end := offset + limit
	if end > len(seq) {
		end = len(seq)
	}
	return seq[offset:end], end < len(seq)
}

// Run filters, orders and pages corpus. The corpus slice itself is not reordered.
func Run(corpus []*domain.Question, req domain.SearchRequest) domain.SearchResult {
	matched := Filter(corpus, req.Filter)
	Sort(matched, req.Sort, Terms(req.Filter.Query))
	page, hasMore := Paginate(matched, req.Limit, req.Offset)
	return domain.SearchResult{
		Questions: page,
		HasMore:   hasMore,
	}
}

// MinSuggestionQuery is the shortest query that produces suggestions.
const MinSuggestionQuery = 2

// Suggest returns up to limit distinct titles, then tags, that contain query
// case-insensitively.
func Suggest(corpus []*domain.Question, query string, limit int) []string {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSuggestionQuery || limit <= 0 {
		return []string{}
	}
	needle := strings.ToLower(query)

	seen := make(map[string]struct{})
	out := make([]string, 0, limit)
	add := func(s string) bool {
		if _, ok := seen[s]; ok || s == "" {
			return len(out) < limit
		}
		seen[s] = struct{}{}
		out = append(out, s)
		return len(out) < limit
	}

	for _, q := range corpus {
		if strings.Contains(strings.ToLower(q.Title), needle) && !add(q.Title) {
			return out
		}
	}
	for _, q := range corpus {
		for _, tag := range q.Tags {
			if strings.Contains(strings.ToLower(tag), needle) && !add(tag) {
				return out
			}
		}
	}
	return out
}
