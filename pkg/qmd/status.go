package qmd

import "github.com/qmd-engine/qmd/internal/store"

// Status reports document counts by collection, total document/chunk
// counts, per-namespace vector counts, and the active provider
// (4.A status()).
func (e *Engine) Status() (*store.Status, error) {
	return e.Store.GetStatus()
}

// CleanupResult summarizes the maintenance primitives run by cleanup().
type CleanupResult struct {
	InactiveDocumentsDeleted int64
	OrphanedVectorsDeleted   int64
	LLMCacheEntriesDeleted   int64
}

// Cleanup runs qmd's maintenance primitives: permanently removing
// inactive document rows, vector rows whose parent document is gone,
// and the entire LLM response cache.
func (e *Engine) Cleanup() (*CleanupResult, error) {
	inactive, err := e.Store.DeleteInactive()
	if err != nil {
		return nil, err
	}
	orphaned, err := e.Store.CleanupOrphanedVectors()
	if err != nil {
		return nil, err
	}
	cache, err := e.Store.DeleteLLMCache()
	if err != nil {
		return nil, err
	}
	return &CleanupResult{
		InactiveDocumentsDeleted: inactive,
		OrphanedVectorsDeleted:   orphaned,
		LLMCacheEntriesDeleted:   cache,
	}, nil
}
