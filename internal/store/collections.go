package store

import (
	"fmt"

	qmderrors "github.com/qmd-engine/qmd/internal/errors"
)

// AddCollection registers a new collection. Name must be unique.
func (s *Store) AddCollection(name, path, mask string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mask == "" {
		mask = "**/*.md"
	}

	var exists int
	_ = s.db.QueryRow(`SELECT 1 FROM collections WHERE name = ?`, name).Scan(&exists)
	if exists == 1 {
		return qmderrors.Conflict(fmt.Sprintf("collection %q already exists", name), nil).WithDetail("collection", name)
	}

	_, err := s.db.Exec(`INSERT INTO collections(name, path, mask) VALUES (?, ?, ?)`, name, path, mask)
	if err != nil {
		return fmt.Errorf("insert collection: %w", err)
	}
	return nil
}

// ListCollections returns all registered collections.
func (s *Store) ListCollections() ([]Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT name, path, mask FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var collections []Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.Name, &c.Path, &c.Mask); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

// RemoveCollection deletes a collection registration. It does not touch
// documents already indexed under that name; callers run cleanup
// separately to reclaim inactive rows.
func (s *Store) RemoveCollection(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM collections WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return qmderrors.NotFoundError(fmt.Sprintf("collection %q not found", name), nil).WithDetail("collection", name)
	}
	return nil
}

// RenameCollection renames a collection, preserving the identity of its
// documents (3. DATA MODEL: "rename preserves identity").
func (s *Store) RenameCollection(oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rename: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	_ = tx.QueryRow(`SELECT 1 FROM collections WHERE name = ?`, newName).Scan(&exists)
	if exists == 1 {
		return qmderrors.Conflict(fmt.Sprintf("collection %q already exists", newName), nil).WithDetail("collection", newName)
	}

	if _, err := tx.Exec(`UPDATE collections SET name = ? WHERE name = ?`, newName, oldName); err != nil {
		return fmt.Errorf("rename collection: %w", err)
	}
	if _, err := tx.Exec(`UPDATE documents SET collection = ? WHERE collection = ?`, newName, oldName); err != nil {
		return fmt.Errorf("rename collection documents: %w", err)
	}
	return tx.Commit()
}

// AddContext upserts the free-text description for a virtual path.
func (s *Store) AddContext(vpath, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO path_contexts(vpath, text) VALUES (?, ?)
		ON CONFLICT(vpath) DO UPDATE SET text = excluded.text`, vpath, text)
	if err != nil {
		return fmt.Errorf("add context: %w", err)
	}
	return nil
}

// ListContexts returns all registered path contexts.
func (s *Store) ListContexts() ([]PathContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT vpath, text FROM path_contexts ORDER BY vpath`)
	if err != nil {
		return nil, fmt.Errorf("list contexts: %w", err)
	}
	defer rows.Close()

	var contexts []PathContext
	for rows.Next() {
		var c PathContext
		if err := rows.Scan(&c.VPath, &c.Text); err != nil {
			return nil, fmt.Errorf("scan context: %w", err)
		}
		contexts = append(contexts, c)
	}
	return contexts, rows.Err()
}

// RemoveContext deletes the context entry for vpath.
func (s *Store) RemoveContext(vpath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM path_contexts WHERE vpath = ?`, vpath)
	if err != nil {
		return fmt.Errorf("remove context: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return qmderrors.NotFoundError(fmt.Sprintf("context %q not found", vpath), nil).WithDetail("vpath", vpath)
	}
	return nil
}
