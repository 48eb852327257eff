package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"questa-search/internal/domain"
	"questa-search/internal/dto"
	"questa-search/internal/history"
)

var errSearchFailed = errors.New("search failed")

const maxTitleWidth = 60

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resultOutput extends the API response with where the page came from.
type resultOutput struct {
	dto.SearchQuestionsResponse
	Source domain.Source `json:"source"`
}

func (a *app) printResult(req domain.SearchRequest, res domain.SearchResult) error {
	if a.jsonOutput {
		return a.printJSON(resultOutput{dto.NewSearchQuestionsResponse(req, res), res.Source})
	}
	if res.Source == domain.SourceLocal {
		fmt.Fprintln(a.out, "(offline: results from the local store)")
	}
	if len(res.Questions) == 0 {
		fmt.Fprintln(a.out, "no questions found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSUBJECT\tLEVEL\tTYPE\tTITLE")
	for _, q := range res.Questions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", q.ID, q.Subject, q.Difficulty, q.Type, truncate(displayTitle(q), maxTitleWidth))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if res.HasMore {
		fmt.Fprintf(a.out, "more results: use --offset %d\n", req.Offset+len(res.Questions))
	}
	return nil
}

func (a *app) printSuggestions(query string, suggestions []string) error {
	if a.jsonOutput {
		return a.printJSON(dto.SuggestionsResponse{Suggestions: suggestions, Query: query})
	}
	for _, s := range suggestions {
		fmt.Fprintln(a.out, s)
	}
	return nil
}

func (a *app) printQuestion(q *domain.Question) error {
	if a.jsonOutput {
		return a.printJSON(dto.QuestionResponse{Question: q})
	}
	fmt.Fprintf(a.out, "%s  [%s, level %d, %s]\n", displayTitle(q), q.Subject, q.Difficulty, q.Type)
	if q.Title != "" && q.Body != "" {
		fmt.Fprintf(a.out, "\n%s\n", q.Body)
	}
	for i, c := range q.Choices {
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, c)
	}
	if len(q.Tags) > 0 {
		fmt.Fprintf(a.out, "\ntags: %s\n", strings.Join(q.Tags, ", "))
	}
	if q.Answer != "" {
		fmt.Fprintf(a.out, "answer: %s\n", q.Answer)
	}
	if q.Explanation != "" {
		fmt.Fprintf(a.out, "explanation: %s\n", q.Explanation)
	}
	return nil
}

func (a *app) printHistory(entries []history.Entry) error {
	if a.jsonOutput {
		return a.printJSON(entries)
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "%s  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), e.Query)
	}
	return nil
}

func (a *app) printQueue(items []domain.SyncQueueItem) error {
	if a.jsonOutput {
		return a.printJSON(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "queue is empty")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACTION\tQUESTION\tQUEUED")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", it.Action, it.Question.ID, it.QueuedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func displayTitle(q *domain.Question) string {
	if q.Title != "" {
		return q.Title
	}
	return strings.Join(strings.Fields(q.Body), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
