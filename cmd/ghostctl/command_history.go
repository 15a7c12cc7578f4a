package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mattjoyce/ghost/internal/tui/watch"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		limit    int
		live     bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent dispatched commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, db, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if live {
				_, err := tea.NewProgram(watch.New(store, interval)).Run()
				return err
			}

			dispatches, err := store.ListDispatches(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printDispatchTable(cmd.OutOrStdout(), dispatches)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().BoolVarP(&live, "watch", "w", false, "Open the live view")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Refresh interval for --watch")
	return cmd
}

func newRunsCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent watchdog runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, db, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printRunTable(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}
