package store

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenInMemoryCreatesSchema(t *testing.T) {
	s := newTestStore(t)

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='documents'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpenOnDiskPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.sqlite")

	s1, err := Open(path)
	require.NoError(t, err)
	diff, err := s1.AddOrUpdateDocument("notes", "a.md", "# Title\nhello world")
	require.NoError(t, err)
	assert.True(t, diff.Added)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	doc, notFound, err := s2.FindDocument("a.md", true)
	require.NoError(t, err)
	assert.Nil(t, notFound)
	require.NotNil(t, doc)
	parts := strings.SplitN(doc.Body, "\n", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "hello world", parts[1])
}

func TestNamespaceKeyFoldsPunctuation(t *testing.T) {
	assert.Equal(t, "openai_text_embedding_3_large", NamespaceKey("openai", "text-embedding-3-large"))
	assert.Equal(t, "local_default", NamespaceKey("local", "default"))
}
