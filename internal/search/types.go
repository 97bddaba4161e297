// Package search implements the BM25, vector, and hybrid retrieval
// contracts (4.E-4.I) on top of internal/store, internal/embed and
// internal/llmhost.
package search

// DocResult is one document-level search hit, common to fts_search,
// vec_search and the hybrid pipeline's final output.
type DocResult struct {
	Docid    string
	Filepath string
	Score    float64
	Snippet  string
}
