package qmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFindsKeywordMatch(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Store.AddOrUpdateDocument("notes", "a.md", "# Title\nthe quick brown fox")
	require.NoError(t, err)

	results, err := e.Search("quick fox", 10, "")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "a.md", results[0].Filepath)
}

func TestVSearchWithoutProviderErrors(t *testing.T) {
	e := newTestEngine(t)
	e.embedder = nil

	_, err := e.VSearch(context.Background(), "query", 10, "")
	assert.Error(t, err)
}

func TestVSearchFindsEmbeddedDocument(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Store.AddOrUpdateDocument("notes", "a.md", "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "")
	require.NoError(t, err)

	results, err := e.VSearch(context.Background(), "quick brown fox", 10, "")
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestQueryRunsHybridPipeline(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Store.AddOrUpdateDocument("notes", "a.md", "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "")
	require.NoError(t, err)

	results, err := e.Query(context.Background(), "quick fox", 10, 0, "")
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}
