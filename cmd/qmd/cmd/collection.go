package cmd

import (
	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/output"
)

func newCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Manage document collections",
	}
	cmd.AddCommand(newCollectionAddCmd(), newCollectionListCmd(), newCollectionRemoveCmd(), newCollectionRenameCmd())
	return cmd
}

func newCollectionAddCmd() *cobra.Command {
	var mask string
	cmd := &cobra.Command{
		Use:   "add <name> <path>",
		Short: "Register a collection rooted at path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.CollectionAdd(args[0], args[1], mask); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("added collection %q at %s", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&mask, "mask", "", "glob mask (default **/*.md)")
	return cmd
}

func newCollectionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			collections, err := engine.CollectionList()
			if err != nil {
				return err
			}
			w := output.New(cmd.OutOrStdout())
			for _, c := range collections {
				w.Statusf("", "%s  %s  (%s)", c.Name, c.Path, c.Mask)
			}
			return nil
		},
	}
}

func newCollectionRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a collection and deactivate its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.CollectionRemove(args[0]); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("removed collection %q", args[0])
			return nil
		},
	}
}

func newCollectionRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a collection, preserving document identity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.CollectionRename(args[0], args[1]); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("renamed collection %q to %q", args[0], args[1])
			return nil
		},
	}
}
