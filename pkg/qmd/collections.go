package qmd

import "github.com/qmd-engine/qmd/internal/store"

// CollectionAdd registers a named collection rooted at path with mask
// (default "**/*.md" if empty).
func (e *Engine) CollectionAdd(name, path, mask string) error {
	if mask == "" {
		mask = "**/*.md"
	}
	return e.Store.AddCollection(name, path, mask)
}

// CollectionList returns every registered collection.
func (e *Engine) CollectionList() ([]store.Collection, error) {
	return e.Store.ListCollections()
}

// CollectionRemove deletes a collection registration. Documents already
// indexed under that name are left as-is; run Cleanup to reclaim them.
func (e *Engine) CollectionRemove(name string) error {
	return e.Store.RemoveCollection(name)
}

// CollectionRename renames a collection, preserving its document identity.
func (e *Engine) CollectionRename(oldName, newName string) error {
	return e.Store.RenameCollection(oldName, newName)
}

// ContextAdd attaches free-text context to a virtual path.
func (e *Engine) ContextAdd(vpath, text string) error {
	return e.Store.AddContext(vpath, text)
}

// ContextList returns every stored path context.
func (e *Engine) ContextList() ([]store.PathContext, error) {
	return e.Store.ListContexts()
}

// ContextRm removes the context attached to vpath.
func (e *Engine) ContextRm(vpath string) error {
	return e.Store.RemoveContext(vpath)
}
