package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/output"
)

func newEmbedCmd() *cobra.Command {
	var collection string
	var all bool

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Chunk and embed active documents under the active provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && collection == "" {
				return fmt.Errorf("embed requires --collection or --all")
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			stats, err := engine.Embed(cmd.Context(), collection)
			if err != nil {
				return err
			}

			w := output.New(cmd.OutOrStdout())
			w.Successf("scanned %d documents: %d embedded, %d skipped, %d failed",
				stats.DocumentsScanned, stats.ChunksEmbedded, stats.ChunksSkipped, stats.ChunksFailed)
			if stats.ChunksFailed > 0 {
				w.Warning("some chunks could not be embedded; the provider may be unavailable")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&collection, "collection", "c", "", "restrict to one collection")
	cmd.Flags().BoolVar(&all, "all", false, "embed every collection")
	return cmd
}
