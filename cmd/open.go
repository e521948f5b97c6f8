package main

import (
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <document-id>",
	Short: "Open a document workspace and show its state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ctrl, journal := newController(ctx)
		if journal != nil {
			defer journal.Close()
		}

		vm, err := ctrl.Open(ctx, args[0])
		if err != nil {
			return err
		}
		defer ctrl.Close(ctx)

		return printOut(cmd.OutOrStdout(), vm)
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
