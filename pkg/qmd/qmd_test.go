package qmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qmd-engine/qmd/internal/config"
	"github.com/qmd-engine/qmd/internal/embed"
	"github.com/qmd-engine/qmd/internal/llmhost"
	"github.com/qmd-engine/qmd/internal/store"
)

// fakeEmbedder is a deterministic, no-network Embedder used to exercise
// pkg/qmd without depending on a real provider endpoint.
type fakeEmbedder struct {
	dims int
}

func (f *fakeEmbedder) Name() string        { return "local" }
func (f *fakeEmbedder) ModelID() string     { return "fake" }
func (f *fakeEmbedder) Dimensions() int     { return f.dims }
func (f *fakeEmbedder) HasTokenizer() bool  { return false }
func (f *fakeEmbedder) FormatQuery(t string) string    { return t }
func (f *fakeEmbedder) FormatDocument(t string) string { return t }
func (f *fakeEmbedder) Close() error        { return nil }

func (f *fakeEmbedder) Embed(ctx context.Context, text string, task embed.TaskType) ([]float32, error) {
	return f.vector(text), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string, task embed.TaskType) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t)
	}
	return out, nil
}

// vector derives a stable pseudo-embedding from text length so repeated
// calls for the same chunk produce the same vector.
func (f *fakeEmbedder) vector(text string) []float32 {
	v := make([]float32, f.dims)
	for i := range v {
		v[i] = float32(len(text)%7+1) / float32(i+1)
	}
	return v
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	cfg := &config.Config{
		Embeddings: config.EmbeddingsConfig{Provider: "local", Model: "fake"},
		Fusion: config.FusionConfig{
			RRFConstant:      60,
			RetrievalLimit:   20,
			VectorOversample: 3,
			FusionKeepTop:    20,
		},
	}

	return &Engine{
		Config:   cfg,
		Store:    s,
		Host:     llmhost.New(llmhost.Config{}),
		embedder: &fakeEmbedder{dims: 4},
	}
}
