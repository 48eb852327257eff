// Command questa searches the question bank from the terminal. It talks to the
// search API and falls back to the local store when the server is unreachable.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"questa-search/internal/config"
	"questa-search/internal/logger"

	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	jsonOutput bool
	offline    bool
	verbose    bool
}

// opener builds the app for one invocation. Tests substitute their own.
type opener func(ctx context.Context, flags globalFlags) (*app, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(openFromConfig).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openFromConfig(ctx context.Context, flags globalFlags) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if flags.verbose {
		cfg.Logger.Level = "debug"
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return newApp(ctx, cfg, flags, nil)
}

func newRootCmd(open opener) *cobra.Command {
	var (
		flags globalFlags
		a     *app
	)

	root := &cobra.Command{
		Use:   "questa",
		Short: "Search and maintain the question bank",
		Long: `questa queries the question search API. When the server cannot be reached
it answers from the local store instead, using the same filters and ranking.

Writes made while offline are queued and replayed with "questa queue flush".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			a.out = cmd.OutOrStdout()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.Close()
			}
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "print JSON instead of a table")
	root.PersistentFlags().BoolVar(&flags.offline, "offline", false, "answer from the local store only")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging on stderr")

	current := func() *app { return a }
	root.AddCommand(
		newSearchCmd(current),
		newSuggestCmd(current),
		newGetCmd(current),
		newListCmd(current),
		newHistoryCmd(current),
		newQueueCmd(current),
		newImportCmd(current),
		newBackupCmd(current),
	)
	return root
}
