package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <document-id> <clause-number>",
	Short: "Select a clause and show similar documents and save status",
	Args:  cobra.ExactArgs(2),
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

		return printOut(cmd.OutOrStdout(), ctrl.Snapshot())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
