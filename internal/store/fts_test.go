package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFTSFindsIndexedDocument(t *testing.T) {
	s := newTestStore(t)
	diff, err := s.AddOrUpdateDocument("notes", "a.md", "# Title\nhello world")
	require.NoError(t, err)

	results, err := s.SearchFTS("hello", 10, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, diff.Docid, results[0].Docid)
	assert.GreaterOrEqual(t, results[0].Score, 0.0)
}

func TestSearchFTSScoresNonNegative(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddOrUpdateDocument("notes", "a.md", "alpha beta gamma")
	require.NoError(t, err)
	_, err = s.AddOrUpdateDocument("notes", "b.md", "alpha alpha alpha")
	require.NoError(t, err)

	results, err := s.SearchFTS("alpha", 10, "")
	require.NoError(t, err)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
	}
}

func TestSearchFTSNoMatchesReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddOrUpdateDocument("notes", "a.md", "hello world")
	require.NoError(t, err)

	results, err := s.SearchFTS("nonexistentterm", 10, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFTSFiltersByCollection(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddOrUpdateDocument("work", "a.md", "shared term")
	require.NoError(t, err)
	_, err = s.AddOrUpdateDocument("personal", "b.md", "shared term")
	require.NoError(t, err)

	results, err := s.SearchFTS("shared", 10, "work")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.md", results[0].Filepath)
}

func TestSearchFTSExcludesInactiveDocuments(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddOrUpdateDocument("notes", "a.md", "old content marker")
	require.NoError(t, err)
	_, err = s.AddOrUpdateDocument("notes", "a.md", "new content")
	require.NoError(t, err)

	results, err := s.SearchFTS("marker", 10, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}
