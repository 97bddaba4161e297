package qmd

import (
	"fmt"

	"github.com/qmd-engine/qmd/internal/scanner"
	"github.com/qmd-engine/qmd/internal/store"
)

// UpdateStats summarizes one update() run over a single collection.
type UpdateStats struct {
	Collection string
	Added      int
	Updated    int
	Unchanged  int
	Removed    int
	Errors     []error
}

// Update re-syncs one collection's documents from disk: every file
// matching the collection's mask is diffed in via AddOrUpdateDocument,
// and any previously active document whose file disappeared is
// deactivated. It does not embed; embed() is a separate step so a
// content change can be synced without immediately paying provider cost.
func (e *Engine) Update(name string) (*UpdateStats, error) {
	collections, err := e.Store.ListCollections()
	if err != nil {
		return nil, err
	}

	var target *store.Collection
	for i := range collections {
		if collections[i].Name == name {
			target = &collections[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("unknown collection %q", name)
	}

	matches, scanErrs, err := scanner.Scan(target.Path, target.Mask)
	if err != nil {
		return nil, fmt.Errorf("scan collection %s: %w", name, err)
	}

	stats := &UpdateStats{Collection: name, Errors: scanErrs}
	present := make(map[string]bool, len(matches))
	for _, m := range matches {
		present[m.Filepath] = true

		diff, err := e.Store.AddOrUpdateDocument(name, m.Filepath, m.Body)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Errorf("%s: %w", m.Filepath, err))
			continue
		}
		switch {
		case diff.Added:
			stats.Added++
		case diff.Updated:
			stats.Updated++
		default:
			stats.Unchanged++
		}
	}

	removed, err := e.Store.DeactivateMissing(name, present)
	if err != nil {
		return stats, err
	}
	stats.Removed = int(removed)

	return stats, nil
}

// UpdateAll runs Update over every registered collection.
func (e *Engine) UpdateAll() ([]*UpdateStats, error) {
	collections, err := e.Store.ListCollections()
	if err != nil {
		return nil, err
	}

	results := make([]*UpdateStats, 0, len(collections))
	for _, c := range collections {
		stats, err := e.Update(c.Name)
		if err != nil {
			return results, fmt.Errorf("update %s: %w", c.Name, err)
		}
		results = append(results, stats)
	}
	return results, nil
}
