package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <document-id> <clause-number> <other-file-id>",
	Short: "Render a word-level comparison against another document's clause",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		clauseNumber, err := strconv.Atoi(args[1])
		if err != nil {
			return eris.Wrapf(err, "invalid clause number %q", args[1])
		}

		ctrl, journal := newController(ctx)
		if journal != nil {
			defer journal.Close()
		}

		vm, err := ctrl.Open(ctx, args[0])
		if err != nil {
			return err
		}
		defer ctrl.Close(ctx)

		if vm.ExtractionNeeded {
			return eris.Errorf("document %s has no extracted clauses; run `workbench extract %s` first", args[0], args[0])
		}

		if _, err := ctrl.Select(ctx, clauseNumber); err != nil {
			return err
		}
		ctrl.Wait()

		if _, err := ctrl.SetComparisonTarget(args[2]); err != nil {
			return err
		}

		view, err := ctrl.Compare(ctx)
		if err != nil {
			return err
		}

		return printOut(cmd.OutOrStdout(), view)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
