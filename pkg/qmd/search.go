package qmd

import (
	"context"
	"fmt"

	qmderrors "github.com/qmd-engine/qmd/internal/errors"
	"github.com/qmd-engine/qmd/internal/search"
)

// Search runs BM25 keyword search (4.E).
func (e *Engine) Search(query string, limit int, collection string) ([]search.DocResult, error) {
	return search.FTS(e.Store, query, limit, collection)
}

// VSearch runs vector search (4.F) under the active embedding provider.
// Returns a ProviderUnavailable error if no embedder is configured.
func (e *Engine) VSearch(ctx context.Context, query string, limit int, collection string) ([]search.DocResult, error) {
	if e.embedder == nil {
		return nil, qmderrors.ProviderError("no embedding provider configured", nil)
	}
	return search.VecSearch(ctx, e.Store, e.embedder, query, limit, collection, e.Config.Fusion.VectorOversample)
}

// Query runs the full hybrid pipeline (4.I): multi-query fan-out over
// BM25 and vector retrieval, RRF fusion, and rerank blend.
func (e *Engine) Query(ctx context.Context, query string, limit int, minScore float64, collection string) ([]search.DocResult, error) {
	results, err := e.pipeline().Hybrid(ctx, query, limit, minScore, collection)
	if err != nil {
		return nil, fmt.Errorf("hybrid query: %w", err)
	}
	return results, nil
}
