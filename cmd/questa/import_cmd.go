package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"questa-search/internal/adapter/legacy"
	"questa-search/internal/domain"
	"questa-search/internal/search"
	"questa-search/internal/selector"

	"github.com/spf13/cobra"
)

func newImportCmd(current func() *app) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace local subject backups with questions from a file",
		Long: `Reads question records in any of the legacy shapes and stores them as the
offline backup of their subject. Records without a subject take --subject.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			questions, skipped, err := legacy.DecodeQuestions(data)
			if err != nil {
				return err
			}

			bySubject := map[domain.Subject][]*domain.Question{}
			for _, q := range questions {
				if q.Subject == "" {
					q.Subject = domain.Subject(subject)
				}
				if q.Subject == "" {
					skipped++
					continue
				}
				bySubject[q.Subject] = append(bySubject[q.Subject], q)
			}

			for _, s := range sortedSubjects(bySubject) {
				if err := a.local.SaveBackup(cmd.Context(), s, bySubject[s]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s: %d questions\n", s, len(bySubject[s]))
			}
			if skipped > 0 {
				fmt.Fprintf(a.out, "skipped %d records\n", skipped)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "subject for records that have none")
	return cmd
}

func newBackupCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [subject...]",
		Short: "Download subjects from the server into the local store",
		Long: `Fetches every question of each subject (all known subjects by default) and
stores it as that subject's offline backup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			subjects := domain.KnownSubjects()
			if len(args) > 0 {
				subjects = subjects[:0]
				for _, s := range args {
					subjects = append(subjects, domain.Subject(s))
				}
			}

			for _, s := range subjects {
				req := a.normalizer.Normalize(search.RawQuery{Limit: fmt.Sprint(a.normalizer.MaxLimit)})
				req.Filter.Subjects = []domain.Subject{s}
				pager := selector.NewPager(subjectSearcher{a.remote, s}, req)
				for pager.HasMore() {
					if _, err := pager.Next(cmd.Context()); err != nil {
						return fmt.Errorf("backup of %s failed: %w", s, err)
					}
				}
				questions := pager.Items()
				if err := a.local.SaveBackup(cmd.Context(), s, questions); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s: %d questions\n", s, len(questions))
			}
			return nil
		},
	}
}

// subjectSearcher pages one subject straight from the server, bypassing fallback.
type subjectSearcher struct {
	src     selector.Source
	subject domain.Subject
}

func (s subjectSearcher) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	return s.src.ListBySubject(ctx, s.subject, req)
}

func sortedSubjects(m map[domain.Subject][]*domain.Question) []domain.Subject {
	out := make([]domain.Subject, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
