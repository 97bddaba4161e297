package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/output"
)

func newSearchCmd() *cobra.Command {
	flags := &resultFlags{}
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Exact-keyword BM25 search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			results, err := engine.Search(strings.Join(args, " "), flags.limit, flags.collection)
			if err != nil {
				return err
			}
			return output.WriteResults(cmd.OutOrStdout(), flags.format(), filterMinScore(results, flags.minScore))
		},
	}
	flags.register(cmd)
	return cmd
}
