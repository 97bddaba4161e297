package cmd

import (
	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/output"
)

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Permanently remove inactive documents, orphaned vectors, and the LLM cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			result, err := engine.Cleanup()
			if err != nil {
				return err
			}

			w := output.New(cmd.OutOrStdout())
			w.Successf("removed %d inactive documents, %d orphaned vectors, %d cached LLM responses",
				result.InactiveDocumentsDeleted, result.OrphanedVectorsDeleted, result.LLMCacheEntriesDeleted)
			return nil
		},
	}
}
