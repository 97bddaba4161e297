package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmd-engine/qmd/internal/config"
	"github.com/qmd-engine/qmd/internal/store"
)

func testFusionConfig() config.FusionConfig {
	return config.FusionConfig{
		ExpansionFanout:    2,
		OriginalWeight:     2,
		RRFConstant:        60,
		TopRankBonusRank1:  0.05,
		TopRankBonusRank23: 0.02,
		FusionKeepTop:      30,
		RetrievalLimit:     20,
		VectorOversample:   4,
	}
}

func TestHybridReturnsTopMatchWithoutExpanderOrReranker(t *testing.T) {
	s := newTestStore(t)
	diff, err := s.AddOrUpdateDocument("notes", "channels.md", "golang channels let goroutines communicate safely")
	require.NoError(t, err)
	_, err = s.AddOrUpdateDocument("notes", "unrelated.md", "baking sourdough bread at home")
	require.NoError(t, err)

	embedder := &fakeEmbedder{name: "local", model: "default", dims: 3, vector: []float32{1, 0, 0}}
	namespace := store.NamespaceFromModel(embedder.Name() + "/" + embedder.ModelID())
	require.NoError(t, s.EnsureVectorTable(namespace, 3))
	require.NoError(t, s.AddVector(namespace, diff.ContentHash, 0, []float32{1, 0, 0}))

	p := &Pipeline{
		Store:    s,
		Embedder: embedder,
		Expander: nil,
		Reranker: NoOpReranker{},
		Fusion:   testFusionConfig(),
	}

	results, err := p.Hybrid(context.Background(), "golang channels", 10, 0, "")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, diff.Docid, results[0].Docid)
}

func TestHybridAppliesMinScoreFilter(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddOrUpdateDocument("notes", "a.md", "golang channels")
	require.NoError(t, err)

	embedder := &fakeEmbedder{name: "local", model: "default", dims: 3, vector: []float32{1, 0, 0}}

	p := &Pipeline{
		Store:    s,
		Embedder: embedder,
		Reranker: NoOpReranker{},
		Fusion:   testFusionConfig(),
	}

	results, err := p.Hybrid(context.Background(), "golang channels", 10, 1.5, "")
	require.NoError(t, err)
	assert.Empty(t, results) // normalized RRF score never exceeds 1.0
}

func TestHybridRespectsLimit(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"a.md", "b.md", "c.md"} {
		_, err := s.AddOrUpdateDocument("notes", name, "golang channels "+name)
		require.NoError(t, err)
	}

	embedder := &fakeEmbedder{name: "local", model: "default", dims: 3, vector: []float32{1, 0, 0}}

	p := &Pipeline{
		Store:    s,
		Embedder: embedder,
		Reranker: NoOpReranker{},
		Fusion:   testFusionConfig(),
	}

	results, err := p.Hybrid(context.Background(), "golang channels", 2, 0, "")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 2)
}

func TestBlendWeightsByRankBucket(t *testing.T) {
	rrf, rerank := blendWeights(1)
	assert.Equal(t, 0.75, rrf)
	assert.Equal(t, 0.25, rerank)

	rrf, rerank = blendWeights(5)
	assert.Equal(t, 0.60, rrf)
	assert.Equal(t, 0.40, rerank)

	rrf, rerank = blendWeights(15)
	assert.Equal(t, 0.40, rrf)
	assert.Equal(t, 0.60, rerank)
}

func TestBuildQuerySetFallsBackWhenExpanderNil(t *testing.T) {
	p := &Pipeline{Fusion: testFusionConfig()}
	queries := p.buildQuerySet(context.Background(), "hello")
	assert.Equal(t, []string{"hello", "hello"}, queries)
}
