package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/output"
	"github.com/qmd-engine/qmd/pkg/qmd"
)

func newUpdateCmd() *cobra.Command {
	var collection string
	var all bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Re-sync a collection's documents from disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && collection == "" {
				return fmt.Errorf("update requires --collection or --all")
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			w := output.New(cmd.OutOrStdout())
			if all {
				results, err := engine.UpdateAll()
				for _, s := range results {
					printUpdateStats(w, s)
				}
				return err
			}

			stats, err := engine.Update(collection)
			if err != nil {
				return err
			}
			printUpdateStats(w, stats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&collection, "collection", "c", "", "collection to re-sync")
	cmd.Flags().BoolVar(&all, "all", false, "re-sync every collection")
	return cmd
}

func printUpdateStats(w *output.Writer, s *qmd.UpdateStats) {
	w.Successf("%s: %d added, %d updated, %d unchanged, %d removed",
		s.Collection, s.Added, s.Updated, s.Unchanged, s.Removed)
	for _, e := range s.Errors {
		w.Warning(e.Error())
	}
}
