package qmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionAddDefaultsMask(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.CollectionAdd("notes", "/tmp/notes", ""))

	cols, err := e.CollectionList()
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "**/*.md", cols[0].Mask)
}

func TestCollectionRenamePreservesDocuments(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.CollectionAdd("notes", "/tmp/notes", "**/*.md"))
	_, err := e.Store.AddOrUpdateDocument("notes", "a.md", "hi")
	require.NoError(t, err)

	require.NoError(t, e.CollectionRename("notes", "journal"))

	doc, _, err := e.Get("a.md", false)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "journal", doc.Collection)
}

func TestCollectionRemoveLeavesDocumentsQueryable(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.CollectionAdd("notes", "/tmp/notes", "**/*.md"))
	_, err := e.Store.AddOrUpdateDocument("notes", "a.md", "hi")
	require.NoError(t, err)

	require.NoError(t, e.CollectionRemove("notes"))

	cols, err := e.CollectionList()
	require.NoError(t, err)
	assert.Empty(t, cols)

	doc, _, err := e.Get("a.md", false)
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestCollectionRemoveUnknownCollectionErrors(t *testing.T) {
	e := newTestEngine(t)
	err := e.CollectionRemove("does-not-exist")
	assert.Error(t, err)
}

func TestContextAddListRm(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.ContextAdd("notes/project", "internal tooling notes"))

	ctxs, err := e.ContextList()
	require.NoError(t, err)
	require.Len(t, ctxs, 1)
	assert.Equal(t, "notes/project", ctxs[0].VPath)

	require.NoError(t, e.ContextRm("notes/project"))
	ctxs, err = e.ContextList()
	require.NoError(t, err)
	assert.Empty(t, ctxs)
}
