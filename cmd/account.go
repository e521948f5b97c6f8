package main

import (
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show whether the session is linked to the document store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ctrl, journal := newController(ctx)
		if journal != nil {
			defer journal.Close()
		}

		status, err := ctrl.AccountStatus(ctx)
		if err != nil {
			return err
		}

		return printOut(cmd.OutOrStdout(), status)
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
}
