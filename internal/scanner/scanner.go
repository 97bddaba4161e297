// Package scanner discovers the markdown files belonging to a collection
// by walking its root directory and matching each relative path against
// the collection's glob mask.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	qmderrors "github.com/qmd-engine/qmd/internal/errors"
)

// DefaultMaxFileSize caps a single file read during update() (10MB); files
// over this are reported as Oversize and skipped rather than aborting the
// whole scan (7. ERROR HANDLING DESIGN).
const DefaultMaxFileSize = 10 * 1024 * 1024

// Match is one file discovered under a collection root.
type Match struct {
	// Filepath is relative to the collection root, using forward slashes,
	// as stored in documents.filepath.
	Filepath string
	Body     string
}

// Scan walks root, returning every regular file whose root-relative path
// matches mask (a doublestar pattern, e.g. "**/*.md"). Oversized files and
// per-file read errors are reported in errs rather than aborting the walk,
// matching find_documents' partial-failure contract.
func Scan(root, mask string) (matches []Match, errs []error, err error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve collection root %s: %w", root, err)
	}
	info, statErr := os.Stat(absRoot)
	if statErr != nil {
		return nil, nil, fmt.Errorf("stat collection root %s: %w", absRoot, statErr)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("collection root is not a directory: %s", absRoot)
	}

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			errs = append(errs, walkErr)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			errs = append(errs, relErr)
			return nil
		}
		rel = filepath.ToSlash(rel)

		ok, matchErr := doublestar.Match(mask, rel)
		if matchErr != nil {
			return fmt.Errorf("invalid mask %q: %w", mask, matchErr)
		}
		if !ok {
			return nil
		}

		fi, statErr := d.Info()
		if statErr != nil {
			errs = append(errs, statErr)
			return nil
		}
		if fi.Size() > DefaultMaxFileSize {
			errs = append(errs, qmderrors.Oversize(fmt.Sprintf("%s exceeds %d bytes, skipped", rel, DefaultMaxFileSize)))
			return nil
		}

		body, readErr := os.ReadFile(path)
		if readErr != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", rel, readErr))
			return nil
		}

		matches = append(matches, Match{Filepath: rel, Body: string(body)})
		return nil
	})
	if walkErr != nil {
		return nil, errs, walkErr
	}
	return matches, errs, nil
}
