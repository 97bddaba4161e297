package qmd

import (
	"context"
	"fmt"

	"github.com/qmd-engine/qmd/internal/chunk"
	qmdembed "github.com/qmd-engine/qmd/internal/embed"
	qmderrors "github.com/qmd-engine/qmd/internal/errors"
	"github.com/qmd-engine/qmd/internal/store"
)

// EmbedStats summarizes one embed() run.
type EmbedStats struct {
	DocumentsScanned int
	ChunksEmbedded   int
	ChunksSkipped    int // already embedded under the active namespace
	ChunksFailed     int // transient provider failure, recorded as missing
}

// Embed chunks and embeds every active document (optionally scoped to
// one collection) under the active provider's namespace. A chunk already
// recorded in content_vectors for the active model is skipped rather
// than re-embedded, making repeated Embed calls resumable.
func (e *Engine) Embed(ctx context.Context, collection string) (*EmbedStats, error) {
	if e.embedder == nil {
		return nil, qmderrors.ProviderError("no embedding provider configured", nil)
	}

	docs, err := e.Store.ListActiveDocuments(collection)
	if err != nil {
		return nil, err
	}

	namespace := store.NamespaceKey(e.embedder.Name(), e.embedder.ModelID())
	if err := e.Store.EnsureVectorTable(namespace, e.embedder.Dimensions()); err != nil {
		return nil, err
	}

	policy := e.chunkPolicy()
	model := e.embedder.Name() + "/" + e.embedder.ModelID()

	stats := &EmbedStats{}
	for _, doc := range docs {
		stats.DocumentsScanned++

		chunks, err := chunk.Split(doc.Body, policy)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", doc.Filepath, err)
		}

		done, err := e.Store.EmbeddedSeqs(doc.ContentHash, model)
		if err != nil {
			return nil, err
		}

		pending := make([]int, 0, len(chunks))
		for i := range chunks {
			if done[i] {
				stats.ChunksSkipped++
				continue
			}
			pending = append(pending, i)
		}

		texts := make([]string, len(pending))
		for j, i := range pending {
			texts[j] = chunks[i].Text
		}

		vectors, err := e.embedBatched(ctx, texts)
		if err != nil {
			return nil, err
		}

		for j, i := range pending {
			c := chunks[i]
			if err := e.Store.AddChunk(store.Chunk{
				ContentHash: doc.ContentHash,
				Seq:         i,
				Pos:         c.Pos,
				Model:       model,
			}); err != nil {
				return nil, err
			}

			if vectors[j] == nil {
				stats.ChunksFailed++
				continue
			}
			if err := e.Store.AddVector(namespace, doc.ContentHash, i, vectors[j]); err != nil {
				return nil, err
			}
			stats.ChunksEmbedded++
		}
	}

	return stats, nil
}

// embedBatched embeds texts in provider-sized batches, preserving input
// order and passing through nil entries for texts a batch call fails on
// (ProviderUnavailable, 7. ERROR HANDLING DESIGN: embed marks affected
// chunks null and continues).
func (e *Engine) embedBatched(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	batchSize := qmdembed.DefaultBatchSize
	if e.Config.Embeddings.BatchSize > 0 {
		batchSize = e.Config.Embeddings.BatchSize
	}
	if batchSize > qmdembed.MaxBatchSize {
		batchSize = qmdembed.MaxBatchSize
	}

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.embedder.EmbedBatch(ctx, texts[start:end], qmdembed.TaskDocument)
		if err != nil {
			// entire batch missing; caller records these chunks as failed
			continue
		}
		copy(out[start:end], vecs)
	}
	return out, nil
}

// chunkPolicy selects the token- or character-based chunking policy
// for the active provider, per 4.B.
func (e *Engine) chunkPolicy() chunk.Policy {
	if e.embedder != nil && e.embedder.HasTokenizer() {
		policy := chunk.DefaultTokenPolicy(e.embedder.ModelID())
		if e.Config.Chunk.TokenTarget > 0 {
			policy.TokenTarget = e.Config.Chunk.TokenTarget
		}
		if e.Config.Chunk.OverlapFraction > 0 {
			policy.OverlapFraction = e.Config.Chunk.OverlapFraction
		}
		return policy
	}
	policy := chunk.DefaultCharPolicy()
	if e.Config.Chunk.CharTarget > 0 {
		policy.CharTarget = e.Config.Chunk.CharTarget
	}
	if e.Config.Chunk.OverlapFraction > 0 {
		policy.OverlapFraction = e.Config.Chunk.OverlapFraction
	}
	return policy
}
