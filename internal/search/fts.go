package search

import "github.com/qmd-engine/qmd/internal/store"

// FTS runs the BM25 keyword search contract (4.E): a thin adapter from
// store.FTSResult to the package's document-level DocResult shape.
func FTS(s *store.Store, query string, limit int, collection string) ([]DocResult, error) {
	hits, err := s.SearchFTS(query, limit, collection)
	if err != nil {
		return nil, err
	}

	results := make([]DocResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, DocResult{
			Docid:    h.Docid,
			Filepath: h.Filepath,
			Score:    h.Score,
			Snippet:  h.Snippet,
		})
	}
	return results, nil
}
