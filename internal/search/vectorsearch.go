package search

import (
	"context"
	"sort"

	"github.com/qmd-engine/qmd/internal/embed"
	"github.com/qmd-engine/qmd/internal/store"
)

// VecSearch runs the vector search contract (4.F): embed the query under
// the active provider's namespace, oversample the k-NN graph, collapse
// chunk-level hits to their owning document by max score, and truncate
// to limit.
func VecSearch(ctx context.Context, s *store.Store, embedder embed.Embedder, query string, limit int, collection string, oversample int) ([]DocResult, error) {
	if oversample < 1 {
		oversample = 4
	}

	vec, err := embedder.Embed(ctx, query, embed.TaskQuery)
	if err != nil {
		return nil, err
	}
	if vec == nil {
		// Transient provider failure: no vector, no results, not an error.
		return nil, nil
	}

	namespace := store.NamespaceFromModel(embedder.Name() + "/" + embedder.ModelID())
	hits, err := s.VectorSearch(namespace, vec, limit*oversample)
	if err != nil {
		return nil, err
	}

	best := make(map[string]float64)
	docByHash := make(map[string]*store.Document)
	for _, h := range hits {
		doc, ok := docByHash[h.ContentHash]
		if !ok {
			d, lookupErr := s.GetDocumentByContentHash(h.ContentHash)
			if lookupErr != nil {
				return nil, lookupErr
			}
			docByHash[h.ContentHash] = d
			doc = d
		}
		if doc == nil {
			continue // chunk belongs to a superseded/inactive document
		}
		if collection != "" && doc.Collection != collection {
			continue
		}
		if score := float64(h.Score); score > best[doc.Docid] {
			best[doc.Docid] = score
		}
	}

	results := make([]DocResult, 0, len(best))
	for _, doc := range docByHash {
		if doc == nil {
			continue
		}
		score, ok := best[doc.Docid]
		if !ok {
			continue
		}
		results = append(results, DocResult{
			Docid:    doc.Docid,
			Filepath: doc.Filepath,
			Score:    score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Docid < results[j].Docid
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
