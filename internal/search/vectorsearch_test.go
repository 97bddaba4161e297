package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmd-engine/qmd/internal/embed"
	"github.com/qmd-engine/qmd/internal/store"
)

// fakeEmbedder returns a fixed vector regardless of input text, letting
// tests control similarity purely through the vectors they index.
type fakeEmbedder struct {
	name, model string
	dims        int
	vector      []float32
}

func (f *fakeEmbedder) Name() string                    { return f.name }
func (f *fakeEmbedder) ModelID() string                  { return f.model }
func (f *fakeEmbedder) Dimensions() int                  { return f.dims }
func (f *fakeEmbedder) HasTokenizer() bool                { return false }
func (f *fakeEmbedder) FormatQuery(text string) string    { return text }
func (f *fakeEmbedder) FormatDocument(text string) string { return text }
func (f *fakeEmbedder) Close() error                      { return nil }

func (f *fakeEmbedder) Embed(_ context.Context, _ string, _ embed.TaskType) ([]float32, error) {
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string, task embed.TaskType) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v, _ := f.Embed(context.Background(), texts[i], task)
		out[i] = v
	}
	return out, nil
}

func TestVecSearchCollapsesChunksToDocumentByMaxScore(t *testing.T) {
	s := newTestStore(t)
	diff, err := s.AddOrUpdateDocument("notes", "a.md", "alpha beta gamma")
	require.NoError(t, err)

	embedder := &fakeEmbedder{name: "local", model: "default", dims: 3, vector: []float32{1, 0, 0}}
	namespace := store.NamespaceFromModel(embedder.Name() + "/" + embedder.ModelID())
	require.NoError(t, s.EnsureVectorTable(namespace, 3))
	require.NoError(t, s.AddChunk(store.Chunk{ContentHash: diff.ContentHash, Seq: 0, Pos: 0, Model: embedder.Name() + "/" + embedder.ModelID()}))
	require.NoError(t, s.AddChunk(store.Chunk{ContentHash: diff.ContentHash, Seq: 1, Pos: 10, Model: embedder.Name() + "/" + embedder.ModelID()}))
	require.NoError(t, s.AddVector(namespace, diff.ContentHash, 0, []float32{1, 0, 0}))
	require.NoError(t, s.AddVector(namespace, diff.ContentHash, 1, []float32{0, 1, 0}))

	results, err := VecSearch(context.Background(), s, embedder, "alpha", 10, "", 4)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, diff.Docid, results[0].Docid)
	assert.InDelta(t, 1.0, results[0].Score, 0.001) // best of the two chunk hits
}

func TestVecSearchIgnoresInactiveDocumentChunks(t *testing.T) {
	s := newTestStore(t)
	diff, err := s.AddOrUpdateDocument("notes", "a.md", "alpha beta gamma")
	require.NoError(t, err)

	embedder := &fakeEmbedder{name: "local", model: "default", dims: 3, vector: []float32{1, 0, 0}}
	namespace := store.NamespaceFromModel(embedder.Name() + "/" + embedder.ModelID())
	require.NoError(t, s.EnsureVectorTable(namespace, 3))
	require.NoError(t, s.AddVector(namespace, diff.ContentHash, 0, []float32{1, 0, 0}))

	_, err = s.DeleteInactive()
	require.NoError(t, err)
	_, err = s.AddOrUpdateDocument("notes", "a.md", "completely different content now")
	require.NoError(t, err)

	results, err := VecSearch(context.Background(), s, embedder, "alpha", 10, "", 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVecSearchHonoursCollectionFilter(t *testing.T) {
	s := newTestStore(t)
	diffWork, err := s.AddOrUpdateDocument("work", "a.md", "alpha")
	require.NoError(t, err)
	diffPersonal, err := s.AddOrUpdateDocument("personal", "b.md", "alpha")
	require.NoError(t, err)

	embedder := &fakeEmbedder{name: "local", model: "default", dims: 3, vector: []float32{1, 0, 0}}
	namespace := store.NamespaceFromModel(embedder.Name() + "/" + embedder.ModelID())
	require.NoError(t, s.EnsureVectorTable(namespace, 3))
	require.NoError(t, s.AddVector(namespace, diffWork.ContentHash, 0, []float32{1, 0, 0}))
	require.NoError(t, s.AddVector(namespace, diffPersonal.ContentHash, 0, []float32{1, 0, 0}))

	results, err := VecSearch(context.Background(), s, embedder, "alpha", 10, "work", 4)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, diffWork.Docid, results[0].Docid)
}
