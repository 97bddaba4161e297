package search

import (
	"context"
	"strconv"

	"github.com/qmd-engine/qmd/internal/llmhost"
	"github.com/qmd-engine/qmd/internal/store"
)

const rerankCachePurpose = "rerank"

// RerankResult is one reranked candidate, carrying the cross-encoder's
// relevance score alongside its originating docid (4.H).
type RerankResult struct {
	Docid    string
	Filepath string
	Score    float64
}

// Reranker scores (query, document excerpt) pairs. Rerank preserves the
// input candidate order in its return slice; callers sort by Score.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []RerankCandidate) ([]RerankResult, error)
	Available() bool
}

// RerankCandidate is one document awaiting a relevance judgement,
// carrying the excerpt text the cross-encoder reads alongside the query.
type RerankCandidate struct {
	Docid    string
	Filepath string
	Excerpt  string
}

// HostReranker scores candidates through the shared llmhost.Host's
// reranker slot, caching each (model, query, excerpt) judgement in the
// store's llm_cache so repeat queries over an unchanged corpus skip the
// model call entirely.
type HostReranker struct {
	host  *llmhost.Host
	store *store.Store
	model string
}

// NewHostReranker builds a Reranker backed by host, caching scores under
// model's name.
func NewHostReranker(host *llmhost.Host, s *store.Store, model string) *HostReranker {
	return &HostReranker{host: host, store: s, model: model}
}

// Available reports whether the reranker has an LLM host to call
// (host != nil); callers fall back to NoOpReranker when no rerank
// endpoint is configured.
func (r *HostReranker) Available() bool {
	return r.host != nil
}

// Rerank scores every candidate against query, returning one RerankResult
// per candidate in the same order as candidates.
func (r *HostReranker) Rerank(ctx context.Context, query string, candidates []RerankCandidate) ([]RerankResult, error) {
	results := make([]RerankResult, len(candidates))
	for i, c := range candidates {
		score, err := r.scoreOne(ctx, query, c)
		if err != nil {
			return nil, err
		}
		results[i] = RerankResult{Docid: c.Docid, Filepath: c.Filepath, Score: score}
	}
	return results, nil
}

func (r *HostReranker) scoreOne(ctx context.Context, query string, c RerankCandidate) (float64, error) {
	cacheInput := query + "\x00" + c.Excerpt
	if cached, ok, err := r.store.GetLLMCache(r.model, rerankCachePurpose, cacheInput); err != nil {
		return 0, err
	} else if ok {
		return parseCachedScore(cached), nil
	}

	score, err := r.host.Score(ctx, query, c.Excerpt)
	if err != nil {
		return 0, err
	}

	_ = r.store.PutLLMCache(r.model, rerankCachePurpose, cacheInput, formatCachedScore(score))
	return score, nil
}

func formatCachedScore(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}

func parseCachedScore(cached string) float64 {
	v, err := strconv.ParseFloat(cached, 64)
	if err != nil {
		return 0
	}
	return v
}

// NoOpReranker leaves candidate order/scores untouched, used when no
// reranker is configured; the hybrid pipeline falls back to
// blended = normalized RRF score in this case.
type NoOpReranker struct{}

// Available always reports false so callers know to skip the rerank
// blend step entirely.
func (NoOpReranker) Available() bool { return false }

// Rerank returns every candidate with a zero score; callers checking
// Available() should not call Rerank on a NoOpReranker.
func (NoOpReranker) Rerank(_ context.Context, _ string, candidates []RerankCandidate) ([]RerankResult, error) {
	results := make([]RerankResult, len(candidates))
	for i, c := range candidates {
		results[i] = RerankResult{Docid: c.Docid, Filepath: c.Filepath}
	}
	return results, nil
}
