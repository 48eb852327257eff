package search

import (
	"strings"

	"questa-search/internal/domain"
)

// Per-term weights of the relevance heuristic.
const (
	TitleWeight = 10
	BodyWeight  = 5
	TagWeight   = 3
)

// Score returns the relevance of q for the given lower-cased terms.
// Scores only order results within one query.
func Score(q *domain.Question, terms []string) int {
	if len(terms) == 0 {
		return 0
	}
	title := strings.ToLower(q.Title)
	body := strings.ToLower(q.Body)

	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += TitleWeight
		}
		if strings.Contains(body, term) {
			score += BodyWeight
		}
		if anyTagContains(q.Tags, term) {
			score += TagWeight
		}
	}
	return score
}
