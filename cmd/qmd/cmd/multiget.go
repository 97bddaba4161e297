package cmd

import (
	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/output"
)

func newMultiGetCmd() *cobra.Command {
	var full, lineNumbers bool
	var maxBytes int

	cmd := &cobra.Command{
		Use:   "multi-get <pattern|#docid,...>",
		Short: "Resolve a glob or comma-separated list of paths/docids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			docs, errs, err := engine.MultiGet(args[0], full, maxBytes)
			if err != nil {
				return err
			}

			w := output.New(cmd.OutOrStdout())
			for _, doc := range docs {
				w.Statusf("🔍", "%s  (#%s)", doc.Filepath, doc.Docid)
				if full {
					printBody(cmd, doc.Body, lineNumbers)
				}
			}
			for _, e := range errs {
				w.Warning(e.Error())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include the full document body")
	cmd.Flags().BoolVar(&lineNumbers, "line-numbers", false, "prefix body lines with line numbers")
	cmd.Flags().IntVar(&maxBytes, "max-bytes", 0, "skip and report files larger than this many bytes (0 = no cap)")
	return cmd
}
