package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save <document-id> <clause-number>",
	Short: "Save a clause to your library",
	Long:  "Saves the clause into your per-user library. Saving the same clause again reports already_saved instead of creating a duplicate.",
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

		result, err := ctrl.SaveClause(ctx)
		if err != nil {
			return err
		}
		ctrl.Wait()

		return printOut(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
}
