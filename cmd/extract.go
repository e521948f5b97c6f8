package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	extractForce bool
	extractYes   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <document-id>",
	Short: "Extract clauses from a document",
	Long:  "Runs clause extraction for the document. With --force, discards the cached clause list and renumbers every clause; this is destructive and requires --yes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if extractForce && !extractYes {
			return eris.New("re-extraction renumbers all clauses and invalidates the current selection; pass --yes to confirm")
		}

		ctrl, journal := newController(ctx)
		if journal != nil {
			defer journal.Close()
		}

		if _, err := ctrl.Open(ctx, args[0]); err != nil {
			return err
		}
		defer ctrl.Close(ctx)

		var err error
		if extractForce {
			_, err = ctrl.Reextract(ctx)
		} else {
			_, err = ctrl.Extract(ctx)
		}
		if err != nil {
			return err
		}

		return printOut(cmd.OutOrStdout(), ctrl.Snapshot())
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractForce, "force", false, "force re-extraction (destructive renumbering)")
	extractCmd.Flags().BoolVar(&extractYes, "yes", false, "confirm destructive re-extraction")
	rootCmd.AddCommand(extractCmd)
}
