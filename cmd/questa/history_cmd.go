package main

import (
	"github.com/spf13/cobra"
)

func newHistoryCmd(current func() *app) *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if clearAll {
				return a.history.Clear(cmd.Context())
			}
			entries, err := a.history.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.printHistory(entries)
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "forget all recent searches")
	return cmd
}
