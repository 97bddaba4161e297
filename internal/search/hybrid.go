package search

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/qmd-engine/qmd/internal/config"
	"github.com/qmd-engine/qmd/internal/embed"
	"github.com/qmd-engine/qmd/internal/store"
)

// excerptLen bounds how much of a document's body is handed to the
// reranker as its excerpt; the cross-encoder judges relevance from a
// representative slice, not the full document.
const excerptLen = 2000

// Pipeline runs the hybrid query contract (4.I): multi-query fan-out
// over BM25 and vector retrieval, Reciprocal Rank Fusion, and an
// optional rerank blend.
type Pipeline struct {
	Store    *store.Store
	Embedder embed.Embedder
	Expander Expander
	Reranker Reranker
	Fusion   config.FusionConfig
}

// Hybrid runs the full pipeline for query and returns up to limit
// document hits scoring at least minScore, sorted by blended score
// descending (ties broken lexicographically by docid).
func (p *Pipeline) Hybrid(ctx context.Context, query string, limit int, minScore float64, collection string) ([]DocResult, error) {
	queries := p.buildQuerySet(ctx, query)

	lists, err := p.retrieveAll(ctx, queries, collection)
	if err != nil {
		return nil, err
	}

	fusion := NewRRFFusionWithK(p.Fusion.RRFConstant)
	fusion.BonusRank1 = p.Fusion.TopRankBonusRank1
	fusion.BonusRank23 = p.Fusion.TopRankBonusRank23
	fused := fusion.Fuse(lists)

	keepTop := p.Fusion.FusionKeepTop
	if keepTop <= 0 || keepTop > len(fused) {
		keepTop = len(fused)
	}
	fused = fused[:keepTop]

	blended, err := p.blend(ctx, query, fused)
	if err != nil {
		return nil, err
	}

	filtered := make([]DocResult, 0, len(blended))
	for _, r := range blended {
		if r.Score >= minScore {
			filtered = append(filtered, r)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Score != filtered[j].Score {
			return filtered[i].Score > filtered[j].Score
		}
		return filtered[i].Docid < filtered[j].Docid
	})

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// buildQuerySet expands query into the weighted query set Q: the
// original query counted OriginalWeight times plus up to ExpansionFanout
// LLM-generated variants. Expansion failure (nil variants) falls back to
// Q = {original} alone; with no Expander at all, Q is the OriginalWeight
// copies of the original.
func (p *Pipeline) buildQuerySet(ctx context.Context, query string) []string {
	weight := p.Fusion.OriginalWeight
	if weight < 1 {
		weight = 1
	}
	queries := make([]string, 0, weight+p.Fusion.ExpansionFanout)
	for i := 0; i < weight; i++ {
		queries = append(queries, query)
	}

	if p.Expander == nil {
		return queries
	}
	variants, err := p.Expander.Expand(ctx, query, p.Fusion.ExpansionFanout)
	if err != nil || len(variants) == 0 {
		return []string{query}
	}
	return append(queries, variants...)
}

// retrieveAll runs BM25 and vector retrieval for every query in the set
// concurrently, returning one RankedList per (query, retrieval type)
// pair.
func (p *Pipeline) retrieveAll(ctx context.Context, queries []string, collection string) ([]RankedList, error) {
	lists := make([]RankedList, 2*len(queries))

	g, gctx := errgroup.WithContext(ctx)
	retrievalLimit := p.Fusion.RetrievalLimit
	if retrievalLimit <= 0 {
		retrievalLimit = 20
	}

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			hits, err := FTS(p.Store, q, retrievalLimit, collection)
			if err != nil {
				return err
			}
			lists[2*i] = hits
			return nil
		})
		if p.Embedder != nil {
			g.Go(func() error {
				hits, err := VecSearch(gctx, p.Store, p.Embedder, q, retrievalLimit, collection, p.Fusion.VectorOversample)
				if err != nil {
					return err
				}
				lists[2*i+1] = hits
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lists, nil
}

// blend reranks fused's top documents against query and combines the
// rerank score with the normalized RRF score by the fused-rank bucket
// (4.I position-aware blend): rank 1-3 favors RRF 0.75/0.25, rank 4-10
// splits 0.60/0.40, rank 11+ favors the reranker 0.40/0.60. When no
// reranker is configured, blended score is the normalized RRF score
// alone.
func (p *Pipeline) blend(ctx context.Context, query string, fused []FusedResult) ([]DocResult, error) {
	if p.Reranker == nil || !p.Reranker.Available() || len(fused) == 0 {
		results := make([]DocResult, len(fused))
		for i, r := range fused {
			results[i] = DocResult{Docid: r.Docid, Filepath: r.Filepath, Score: r.NormScore}
		}
		return results, nil
	}

	candidates := make([]RerankCandidate, len(fused))
	for i, r := range fused {
		candidates[i] = RerankCandidate{Docid: r.Docid, Filepath: r.Filepath, Excerpt: p.excerptFor(r.Docid)}
	}

	reranked, err := p.Reranker.Rerank(ctx, query, candidates)
	if err != nil {
		return nil, err
	}

	results := make([]DocResult, len(fused))
	for i, r := range fused {
		rrfWeight, rerankWeight := blendWeights(i + 1)
		results[i] = DocResult{
			Docid:    r.Docid,
			Filepath: r.Filepath,
			Score:    rrfWeight*r.NormScore + rerankWeight*reranked[i].Score,
		}
	}
	return results, nil
}

// blendWeights returns the (rrf, rerank) weight pair for a document's
// pre-rerank fused rank (1-indexed).
func blendWeights(rank int) (rrf, rerank float64) {
	switch {
	case rank <= 3:
		return 0.75, 0.25
	case rank <= 10:
		return 0.60, 0.40
	default:
		return 0.40, 0.60
	}
}

func (p *Pipeline) excerptFor(docid string) string {
	doc, _, err := p.Store.FindDocument("#"+docid, true)
	if err != nil || doc == nil {
		return ""
	}
	if len(doc.Body) <= excerptLen {
		return doc.Body
	}
	return doc.Body[:excerptLen]
}
