package cmd

import (
	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/config"
	"github.com/qmd-engine/qmd/internal/output"
	"github.com/qmd-engine/qmd/internal/search"
	"github.com/qmd-engine/qmd/pkg/qmd"
)

// openEngine loads configuration and opens the store/providers it names.
func openEngine() (*qmd.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if indexOverride != "" {
		cfg.Paths.IndexPath = indexOverride
	}
	return qmd.Open(cfg)
}

// resultFlags holds the shared search-result flags common to
// search/vsearch/query (-n, -c/--collection, --min-score, and the
// --files|--json|--csv|--md|--xml output selectors).
type resultFlags struct {
	limit      int
	collection string
	minScore   float64
	files      bool
	json       bool
	csv        bool
	md         bool
	xml        bool
}

func (f *resultFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 10, "maximum number of results")
	cmd.Flags().StringVarP(&f.collection, "collection", "c", "", "restrict to one collection")
	cmd.Flags().Float64Var(&f.minScore, "min-score", 0, "minimum score to include a result")
	cmd.Flags().BoolVar(&f.files, "files", false, "print matching filepaths only")
	cmd.Flags().BoolVar(&f.json, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&f.csv, "csv", false, "print results as CSV")
	cmd.Flags().BoolVar(&f.md, "md", false, "print results as a markdown table")
	cmd.Flags().BoolVar(&f.xml, "xml", false, "print results as XML")
}

func (f *resultFlags) format() output.Format {
	return output.ParseFormat(f.files, f.json, f.csv, f.md, f.xml)
}

// filterMinScore drops results below minScore. Query() applies its own
// min-score filter internally; search()/vsearch() apply it here since
// FTS/vector scores aren't comparable across query modes.
func filterMinScore(results []search.DocResult, minScore float64) []search.DocResult {
	if minScore <= 0 {
		return results
	}
	out := make([]search.DocResult, 0, len(results))
	for _, r := range results {
		if r.Score >= minScore {
			out = append(out, r)
		}
	}
	return out
}
