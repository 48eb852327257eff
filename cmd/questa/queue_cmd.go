package main

import (
	"fmt"
	"os"

	"questa-search/internal/adapter/legacy"
	"questa-search/internal/domain"
	"questa-search/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newQueueCmd(current func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage writes waiting to be sent to the server",
		Long: `Writes are kept in the local store until the server accepts them.

Available subcommands:
  add    - Save questions locally and queue them for the server
  list   - Show queued writes
  status - Show the queued count and the last sync time
  flush  - Send queued writes; failures stay queued`,
	}
	cmd.AddCommand(newQueueAddCmd(current), newQueueListCmd(current), newQueueStatusCmd(current), newQueueFlushCmd(current))
	return cmd
}

func newQueueAddCmd(current func() *app) *cobra.Command {
	var (
		action   string
		deleteID string
	)
	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Save questions locally and queue them for the server",
		Long: `Reads question records from a JSON file (an array, {"questions": [...]} or one
record), saves them to the local store so offline searches see them, and queues
them for the server. Use --delete <id> to queue a deletion instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			ctx := cmd.Context()

			if deleteID != "" {
				if _, err := a.queue.Enqueue(ctx, &domain.Question{ID: deleteID}, domain.SyncDelete); err != nil {
					return err
				}
				if err := a.local.RemoveQuestion(ctx, deleteID); err != nil {
					logger.Get().Warn("Failed to remove local copy", zap.String("question_id", deleteID), zap.Error(err))
				}
				fmt.Fprintf(a.out, "queued delete of %s\n", deleteID)
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("a question file or --delete is required")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			questions, skipped, err := legacy.DecodeQuestions(data)
			if err != nil {
				return err
			}

			for _, q := range questions {
				if err := q.Validate(); err != nil {
					return fmt.Errorf("question %q: %w", q.Title, err)
				}
			}
			for _, q := range questions {
				item, err := a.queue.Enqueue(ctx, q, domain.SyncAction(action))
				if err != nil {
					return err
				}
				if _, err := a.local.SaveQuestion(ctx, q); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "queued %s of %s\n", item.Action, item.Question.ID)
			}
			if skipped > 0 {
				fmt.Fprintf(a.out, "skipped %d unreadable records\n", skipped)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "create or update (inferred from the id when empty)")
	cmd.Flags().StringVar(&deleteID, "delete", "", "queue deletion of this question id")
	return cmd
}

func newQueueListCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show queued writes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			items, err := a.queue.Pending(cmd.Context())
			if err != nil {
				return err
			}
			return a.printQueue(items)
		},
	}
}

func newQueueStatusCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the queued count and the last sync time",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			st, err := a.queue.Status(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(st)
			}
			last := "never"
			if st.LastSync != nil {
				last = st.LastSync.Local().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(a.out, "queued: %d\nlast sync: %s\n", st.Queued, last)
			return nil
		},
	}
}

func newQueueFlushCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Send queued writes to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			ctx := cmd.Context()

			if err := a.remote.Health(ctx); err != nil {
				logger.Get().Warn("Server unreachable, nothing sent", zap.Error(err))
				return fmt.Errorf("server unreachable; queued writes kept")
			}
			res, err := a.queue.Flush(ctx, a.remote)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(res)
			}
			fmt.Fprintf(a.out, "sent: %d\nfailed: %d\n", res.Successful, res.Failed)
			return nil
		},
	}
}
