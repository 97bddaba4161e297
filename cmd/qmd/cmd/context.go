package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/output"
)

func newContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage free-text context attached to virtual paths",
	}
	cmd.AddCommand(newContextAddCmd(), newContextListCmd(), newContextRmCmd())
	return cmd
}

func newContextAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <vpath> <text...>",
		Short: "Attach free-text context to a virtual path",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.ContextAdd(args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("added context for %q", args[0])
			return nil
		},
	}
}

func newContextListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored path contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			contexts, err := engine.ContextList()
			if err != nil {
				return err
			}
			w := output.New(cmd.OutOrStdout())
			for _, c := range contexts {
				w.Statusf("", "%s: %s", c.VPath, c.Text)
			}
			return nil
		},
	}
}

func newContextRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <vpath>",
		Short: "Remove the context attached to a virtual path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.ContextRm(args[0]); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("removed context for %q", args[0])
			return nil
		},
	}
}
