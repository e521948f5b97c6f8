package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/clauselens/workbench-cli/internal/workspace"
)

var tagRemoveYes bool

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage document tags",
}

var tagsListCmd = &cobra.Command{
	Use:   "list <document-id>",
	Short: "List a document's tags",
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

		return printOut(cmd.OutOrStdout(), map[string]any{"tags": vm.Tags})
	},
}

var tagsAddCmd = &cobra.Command{
	Use:   "add <document-id> <tag>",
	Short: "Add a tag to a document",
	Args:  cobra.ExactArgs(2),
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

		tags, err := ctrl.AddTag(ctx, args[1])
		if err != nil {
			return err
		}

		return printOut(cmd.OutOrStdout(), map[string]any{"tags": tags})
	},
}

var tagsRemoveCmd = &cobra.Command{
	Use:   "remove <document-id> <tag>",
	Short: "Remove a tag from a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if !tagRemoveYes {
			return eris.Errorf("removing tag %q requires confirmation; pass --yes", args[1])
		}

		ctrl, journal := newController(ctx)
		if journal != nil {
			defer journal.Close()
		}

		if _, err := ctrl.Open(ctx, args[0]); err != nil {
			return err
		}
		defer ctrl.Close(ctx)

		tags, err := ctrl.RemoveTag(ctx, workspace.ConfirmTagRemoval(args[1]))
		if err != nil {
			return err
		}

		return printOut(cmd.OutOrStdout(), map[string]any{"tags": tags})
	},
}

func init() {
	tagsRemoveCmd.Flags().BoolVar(&tagRemoveYes, "yes", false, "confirm tag removal")
	tagsCmd.AddCommand(tagsListCmd)
	tagsCmd.AddCommand(tagsAddCmd)
	tagsCmd.AddCommand(tagsRemoveCmd)
	rootCmd.AddCommand(tagsCmd)
}
