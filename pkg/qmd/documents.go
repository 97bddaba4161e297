package qmd

import "github.com/qmd-engine/qmd/internal/store"

// Get resolves query (an exact filepath or "#docid") to a document, per
// find_document (4.A). A miss returns a NotFoundResult with nearest-path
// suggestions rather than a near-miss document.
func (e *Engine) Get(query string, includeBody bool) (*store.Document, *store.NotFoundResult, error) {
	return e.Store.FindDocument(query, includeBody)
}

// MultiGet resolves a glob or comma-separated list of paths/docids,
// reporting oversized files under errs rather than returning them
// (find_documents, 4.A).
func (e *Engine) MultiGet(pattern string, includeBody bool, maxBytes int) ([]*store.Document, []error, error) {
	return e.Store.FindDocuments(pattern, includeBody, maxBytes)
}
