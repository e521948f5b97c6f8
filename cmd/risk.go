package main

import (
	"github.com/spf13/cobra"
)

var riskCmd = &cobra.Command{
	Use:   "risk <document-id>",
	Short: "Show a document's risk assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ctrl, journal := newController(ctx)
		if journal != nil {
			defer journal.Close()
		}

		if _, err := ctrl.Open(ctx, args[0]); err != nil {
			return err
		}
		defer ctrl.Close(ctx)

		// Risk is independent of extraction; fetch it fresh even if the
		// open already merged one.
		assessment, err := ctrl.LoadRisk(ctx)
		if err != nil {
			return err
		}

		return printOut(cmd.OutOrStdout(), assessment)
	},
}

func init() {
	rootCmd.AddCommand(riskCmd)
}
