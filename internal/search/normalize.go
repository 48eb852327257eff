package search

import (
	"net/url"
	"strconv"
	"strings"

	"questa-search/internal/domain"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// RawQuery is a search as it arrives on the wire: every value is a string and
// list values are comma-delimited.
type RawQuery struct {
	Query        string
	Subjects     string
	Difficulties string
	Types        string
	Tags         string
	Sort         string
	Limit        string
	Offset       string
}

// RawQueryFromValues reads the search parameters out of a query string.
func RawQueryFromValues(v url.Values) RawQuery {
	return RawQuery{
		Query:        v.Get("q"),
		Subjects:     v.Get("subjects"),
		Difficulties: v.Get("difficulties"),
		Types:        v.Get("types"),
		Tags:         v.Get("tags"),
		Sort:         v.Get("sort"),
		Limit:        v.Get("limit"),
		Offset:       v.Get("offset"),
	}
}

// Normalizer turns raw parameters into a SearchRequest. Malformed values never
// fail a search; they fall back to "no constraint" or to the defaults.
type Normalizer struct {
	DefaultLimit int
	MaxLimit     int
}

// NewNormalizer returns a Normalizer, substituting package defaults for non-positive limits.
func NewNormalizer(defaultLimit, maxLimit int) Normalizer {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(DefaultLimit, maxLimit)
	}
	return Normalizer{DefaultLimit: defaultLimit, MaxLimit: maxLimit}
}

// Normalize uses DefaultLimit and MaxLimit.
func Normalize(raw RawQuery) domain.SearchRequest {
	return NewNormalizer(DefaultLimit, MaxLimit).Normalize(raw)
}

func (n Normalizer) Normalize(raw RawQuery) domain.SearchRequest {
	f := domain.Filter{
		Query: strings.TrimSpace(raw.Query),
	}
	for _, s := range splitList(raw.Subjects) {
		f.Subjects = append(f.Subjects, domain.Subject(s))
	}
	for _, s := range splitList(raw.Difficulties) {
		d, err := strconv.Atoi(s)
		if err != nil || !domain.ValidDifficulty(d) {
			continue
		}
		f.Difficulties = append(f.Difficulties, d)
	}
	for _, s := range splitList(raw.Types) {
		f.Types = append(f.Types, domain.QuestionType(s))
	}
	f.Tags = splitList(raw.Tags)

	return domain.SearchRequest{
		Filter: f,
		Sort:   domain.ParseSortOrder(strings.TrimSpace(raw.Sort)),
		Limit:  n.limit(raw.Limit),
		Offset: parseOffset(raw.Offset),
	}
}

func (n Normalizer) limit(s string) int {
	l, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || l <= 0 {
		return n.DefaultLimit
	}
	if l > n.MaxLimit {
		return n.MaxLimit
	}
	return l
}

func parseOffset(s string) int {
	o, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || o < 0 {
		return 0
	}
	return o
}

// splitList splits a comma-delimited value, dropping empty items.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Terms lower-cases query and splits it on whitespace.
func Terms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Encode is the inverse of Normalize, used when forwarding a request to a remote server.
func Encode(req domain.SearchRequest) url.Values {
	v := url.Values{}
	if req.Filter.Query != "" {
		v.Set("q", req.Filter.Query)
	}
	if len(req.Filter.Subjects) > 0 {
		parts := make([]string, len(req.Filter.Subjects))
		for i, s := range req.Filter.Subjects {
			parts[i] = string(s)
		}
		v.Set("subjects", strings.Join(parts, ","))
	}
	if len(req.Filter.Difficulties) > 0 {
		parts := make([]string, len(req.Filter.Difficulties))
		for i, d := range req.Filter.Difficulties {
			parts[i] = strconv.Itoa(d)
		}
		v.Set("difficulties", strings.Join(parts, ","))
	}
	if len(req.Filter.Types) > 0 {
		parts := make([]string, len(req.Filter.Types))
		for i, t := range req.Filter.Types {
			parts[i] = string(t)
		}
		v.Set("types", strings.Join(parts, ","))
	}
	if len(req.Filter.Tags) > 0 {
		v.Set("tags", strings.Join(req.Filter.Tags, ","))
	}
	if req.Sort != "" {
		v.Set("sort", string(req.Sort))
	}
	if req.Limit > 0 {
		v.Set("limit", strconv.Itoa(req.Limit))
	}
	v.Set("offset", strconv.Itoa(req.Offset))
	return v
}
