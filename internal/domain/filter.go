package domain

// SortOrder selects how search results are ordered.
type SortOrder string

const (
	SortCreatedDesc    SortOrder = "created_desc"
	SortCreatedAsc     SortOrder = "created_asc"
	SortDifficultyAsc  SortOrder = "difficulty_asc"
	SortDifficultyDesc SortOrder = "difficulty_desc"
	SortRelevance      SortOrder = "relevance"
)

// ParseSortOrder returns created_desc for anything it does not recognise.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortCreatedDesc, SortCreatedAsc, SortDifficultyAsc, SortDifficultyDesc, SortRelevance:
		return SortOrder(s)
	default:
		return SortCreatedDesc
	}
}

// Filter holds the structured constraints of one search. Empty sets mean no constraint.
type Filter struct {
	Subjects     []Subject      `json:"subjects,omitempty"`
	Difficulties []int          `json:"difficulties,omitempty"`
	Types        []QuestionType `json:"types,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Query        string         `json:"query,omitempty"`
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return len(f.Subjects) == 0 && len(f.Difficulties) == 0 && len(f.Types) == 0 &&
		len(f.Tags) == 0 && f.Query == ""
}

// SearchRequest is the canonical form of a search after normalization.
type SearchRequest struct {
	Filter Filter    `json:"filter"`
	Sort   SortOrder `json:"sort"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// Source names where a result came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local_fallback"
)

// SearchResult is one page of questions. It is rebuilt for every query.
type SearchResult struct {
	Questions []*Question `json:"questions"`
	HasMore   bool        `json:"has_more"`
	Source    Source      `json:"source"`
}
