package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/output"
)

func newVSearchCmd() *cobra.Command {
	flags := &resultFlags{}
	cmd := &cobra.Command{
		Use:   "vsearch <query>",
		Short: "Vector-semantic search against the active embedding provider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			results, err := engine.VSearch(cmd.Context(), strings.Join(args, " "), flags.limit, flags.collection)
			if err != nil {
				return err
			}
			return output.WriteResults(cmd.OutOrStdout(), flags.format(), filterMinScore(results, flags.minScore))
		},
	}
	flags.register(cmd)
	return cmd
}
