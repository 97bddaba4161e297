package qmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCollectionFile(t *testing.T, root, rel, body string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

func TestUpdateAddsNewFilesAndDetectsUnchanged(t *testing.T) {
	e := newTestEngine(t)
	root := t.TempDir()
	writeCollectionFile(t, root, "a.md", "hello")
	require.NoError(t, e.CollectionAdd("notes", root, "**/*.md"))

	stats, err := e.Update("notes")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 0, stats.Unchanged)

	stats2, err := e.Update("notes")
	require.NoError(t, err)
	assert.Equal(t, 0, stats2.Added)
	assert.Equal(t, 1, stats2.Unchanged)
}

func TestUpdateDetectsModifiedAndRemovedFiles(t *testing.T) {
	e := newTestEngine(t)
	root := t.TempDir()
	writeCollectionFile(t, root, "a.md", "v1")
	writeCollectionFile(t, root, "b.md", "v1")
	require.NoError(t, e.CollectionAdd("notes", root, "**/*.md"))

	_, err := e.Update("notes")
	require.NoError(t, err)

	writeCollectionFile(t, root, "a.md", "v2")
	require.NoError(t, os.Remove(filepath.Join(root, "b.md")))

	stats, err := e.Update("notes")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 1, stats.Removed)
}

func TestUpdateUnknownCollectionErrors(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Update("does-not-exist")
	assert.Error(t, err)
}

func TestUpdateAllRunsEveryCollection(t *testing.T) {
	e := newTestEngine(t)
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeCollectionFile(t, rootA, "a.md", "body")
	writeCollectionFile(t, rootB, "b.md", "body")
	require.NoError(t, e.CollectionAdd("notes", rootA, "**/*.md"))
	require.NoError(t, e.CollectionAdd("journal", rootB, "**/*.md"))

	results, err := e.UpdateAll()
	require.NoError(t, err)
	require.Len(t, results, 2)
}
