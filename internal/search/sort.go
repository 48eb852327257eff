package search

import (
	"cmp"
	"slices"

	"questa-search/internal/domain"
)

// Sort orders questions in place. The sort is stable. Difficulty and relevance
// orders break ties by created_at descending.
func Sort(questions []*domain.Question, order domain.SortOrder, terms []string) {
	if order == domain.SortRelevance && len(terms) == 0 {
		order = domain.SortCreatedDesc
	}

	switch order {
	case domain.SortCreatedAsc:
		slices.SortStableFunc(questions, func(a, b *domain.Question) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	case domain.SortDifficultyAsc:
		slices.SortStableFunc(questions, func(a, b *domain.Question) int {
			return cmp.Or(cmp.Compare(a.Difficulty, b.Difficulty), newestFirst(a, b))
		})
	case domain.SortDifficultyDesc:
		slices.SortStableFunc(questions, func(a, b *domain.Question) int {
			return cmp.Or(cmp.Compare(b.Difficulty, a.Difficulty), newestFirst(a, b))
		})
	case domain.SortRelevance:
		scores := make(map[*domain.Question]int, len(questions))
		for _, q := range questions {
			scores[q] = Score(q, terms)
		}
		slices.SortStableFunc(questions, func(a, b *domain.Question) int {
			return cmp.Or(cmp.Compare(scores[b], scores[a]), newestFirst(a, b))
		})
	default:
		slices.SortStableFunc(questions, newestFirst)
	}
}

func newestFirst(a, b *domain.Question) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}
