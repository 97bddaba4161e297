package store

import (
	"fmt"
	"strings"
)

// FTSResult is one BM25 keyword hit (4.E BM25 search).
type FTSResult struct {
	Docid    string
	Score    float64
	Filepath string
	Snippet  string
}

// SearchFTS runs query through the FTS5 BM25 ranker and returns up to
// limit hits, optionally restricted to one collection. FTS5's bm25()
// returns negative scores by convention; they are converted to positive
// magnitudes here.
func (s *Store) SearchFTS(query string, limit int, collection string) ([]FTSResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	args := []any{query}
	collectionFilter := ""
	if collection != "" {
		collectionFilter = "AND d.collection = ?"
		args = append(args, collection)
	}
	args = append(args, limit)

	sqlQuery := fmt.Sprintf(`
		SELECT d.docid, d.filepath, bm25(documents_fts) AS score,
		       snippet(documents_fts, 1, '>>>', '<<<', '...', 12) AS snippet
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.rowid
		WHERE documents_fts MATCH ? AND d.active = 1 %s
		ORDER BY score
		LIMIT ?
	`, collectionFilter)

	rows, err := s.db.Query(sqlQuery, args...)
	if err != nil {
		if strings.Contains(err.Error(), "fts5:") || strings.Contains(err.Error(), "syntax error") {
			return nil, nil
		}
		return nil, fmt.Errorf("fts search: %w", err)
	}
	defer rows.Close()

	var results []FTSResult
	for rows.Next() {
		var r FTSResult
		if err := rows.Scan(&r.Docid, &r.Filepath, &r.Score, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan fts result: %w", err)
		}
		r.Score = -r.Score // bm25() is negative; convert to positive magnitude
		results = append(results, r)
	}
	return results, rows.Err()
}
