package main

import (
	"github.com/spf13/cobra"

	"github.com/clauselens/workbench-cli/internal/store"
)

var (
	historyDocumentID string
	historyLimit      int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past workspace sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		journal, err := initJournal(ctx)
		if err != nil {
			return err
		}
		defer journal.Close()

		if err := journal.Migrate(ctx); err != nil {
			return err
		}

		sessions, err := journal.ListSessions(ctx, store.SessionFilter{
			DocumentID: historyDocumentID,
			Limit:      historyLimit,
		})
		if err != nil {
			return err
		}

		return printOut(cmd.OutOrStdout(), sessions)
	},
}

var historyActionsCmd = &cobra.Command{
	Use:   "actions <session-id>",
	Short: "List the actions taken in a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		journal, err := initJournal(ctx)
		if err != nil {
			return err
		}
		defer journal.Close()

		actions, err := journal.ListActions(ctx, args[0])
		if err != nil {
			return err
		}

		return printOut(cmd.OutOrStdout(), actions)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyDocumentID, "document", "", "filter by document id")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum sessions to list")
	historyCmd.AddCommand(historyActionsCmd)
	rootCmd.AddCommand(historyCmd)
}
