package main

import (
	"strings"

	"questa-search/internal/domain"
	"questa-search/internal/logger"
	"questa-search/internal/search"
	"questa-search/internal/selector"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSearchCmd(current func() *app) *cobra.Command {
	var (
		raw search.RawQuery
		all bool
	)
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search questions by text and filters",
		Long: `Search questions. Filters take comma separated values; malformed values are ignored.

Example:
  questa search coffee --subjects english --sort relevance
  questa search --difficulties 1,2 --types mc --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			ctx := cmd.Context()
			raw.Query = strings.Join(args, " ")
			req := a.normalizer.Normalize(raw)

			if req.Filter.Query != "" {
				if err := a.history.Add(ctx, req.Filter.Query); err != nil {
					logger.Get().Warn("Failed to record search history", zap.Error(err))
				}
			}

			if !all {
				res, err := a.selector.Search(ctx, req)
				if err != nil {
					return searchFailed(err)
				}
				return a.printResult(req, res)
			}

			pager := selector.NewPager(a.selector, req)
			var source domain.Source
			for pager.HasMore() {
				res, err := pager.Next(ctx)
				if err != nil {
					return searchFailed(err)
				}
				source = res.Source
			}
			return a.printResult(req, domain.SearchResult{Questions: pager.Items(), Source: source})
		},
	}
	f := cmd.Flags()
	f.StringVar(&raw.Subjects, "subjects", "", "subjects, e.g. math,english")
	f.StringVar(&raw.Difficulties, "difficulties", "", "difficulties 1-5, e.g. 2,3")
	f.StringVar(&raw.Types, "types", "", "question types: mc, open, fill_blank, essay")
	f.StringVar(&raw.Tags, "tags", "", "tags; all must be present (case-sensitive)")
	f.StringVar(&raw.Sort, "sort", "", "created_desc, created_asc, difficulty_asc, difficulty_desc or relevance")
	f.StringVar(&raw.Limit, "limit", "", "page size")
	f.StringVar(&raw.Offset, "offset", "", "items to skip")
	f.BoolVar(&all, "all", false, "load every page")
	return cmd
}

func newSuggestCmd(current func() *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "suggest <partial>",
		Short: "Autocomplete titles and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			query := strings.TrimSpace(args[0])
			if len([]rune(query)) < search.MinSuggestionQuery {
				return a.printSuggestions(query, []string{})
			}
			if limit <= 0 {
				limit = a.cfg.Search.SuggestionLimit
			}
			suggestions, err := a.selector.Suggestions(cmd.Context(), query, limit)
			if err != nil {
				return searchFailed(err)
			}
			return a.printSuggestions(query, suggestions)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum suggestions")
	return cmd
}

func newGetCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			q, err := a.selector.GetQuestion(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printQuestion(q)
		},
	}
}

func newListCmd(current func() *app) *cobra.Command {
	var raw search.RawQuery
	cmd := &cobra.Command{
		Use:   "list <subject>",
		Short: "List a subject's questions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			subject := domain.Subject(strings.ToLower(strings.TrimSpace(args[0])))
			req := a.normalizer.Normalize(raw)
			req.Filter.Subjects = []domain.Subject{subject}
			req.Sort = domain.SortCreatedDesc

			res, err := a.selector.ListBySubject(cmd.Context(), subject, req)
			if err != nil {
				return searchFailed(err)
			}
			return a.printResult(req, res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&raw.Difficulties, "difficulties", "", "difficulties 1-5")
	f.StringVar(&raw.Types, "types", "", "question types")
	f.StringVar(&raw.Tags, "tags", "", "tags")
	f.StringVar(&raw.Limit, "limit", "", "page size")
	f.StringVar(&raw.Offset, "offset", "", "items to skip")
	return cmd
}

// searchFailed hides transport detail from the user; the cause is logged.
func searchFailed(err error) error {
	if domain.IsNotFound(err) {
		return err
	}
	logger.Get().Error("Search failed", zap.Error(err))
	return errSearchFailed
}
