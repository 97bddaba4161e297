package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/output"
)

func newQueryCmd() *cobra.Command {
	flags := &resultFlags{}
	cmd := &cobra.Command{
		Use:   "query <query>",
		Short: "Hybrid search: RRF-fused BM25 + vector retrieval over expanded queries, LLM-reranked",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			results, err := engine.Query(cmd.Context(), strings.Join(args, " "), flags.limit, flags.minScore, flags.collection)
			if err != nil {
				return err
			}
			return output.WriteResults(cmd.OutOrStdout(), flags.format(), results)
		},
	}
	flags.register(cmd)
	return cmd
}
