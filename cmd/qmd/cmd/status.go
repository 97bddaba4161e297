package cmd

import (
	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/output"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report document/chunk counts and the active provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			status, err := engine.Status()
			if err != nil {
				return err
			}

			w := output.New(cmd.OutOrStdout())
			w.Statusf("", "provider: %s/%s", status.ActiveProvider, status.ActiveModel)
			w.Statusf("", "documents: %d  chunks: %d", status.TotalDocuments, status.TotalChunks)
			for _, c := range status.Collections {
				w.Statusf("", "  %s: %d documents", c.Name, c.DocumentCount)
			}
			for _, ns := range status.VectorsByNS {
				w.Statusf("", "  vectors[%s]: %d", ns.Namespace, ns.VectorCount)
			}
			return nil
		},
	}
}
