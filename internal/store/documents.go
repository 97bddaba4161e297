package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"

	qmderrors "github.com/qmd-engine/qmd/internal/errors"
)

// contentHash returns the 256-bit content hash of a document body, and the
// 6-hex-character docid derived from it (3. DATA MODEL).
func contentHash(body string) (hash, docid string) {
	sum := sha256.Sum256([]byte(body))
	hash = hex.EncodeToString(sum[:])
	return hash, hash[:6]
}

// deriveTitle extracts the first top-level markdown heading, falling back
// to the filename stem.
func deriveTitle(filepathValue, body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	base := path.Base(filepathValue)
	return strings.TrimSuffix(base, path.Ext(base))
}

// AddOrUpdateDocument computes the content hash of body and either leaves
// the current active row untouched (Unchanged), inactivates it and
// inserts a fresh active row (Updated), or inserts the first active row
// for (collection, filepath) (Added).
func (s *Store) AddOrUpdateDocument(collection, filepathValue, body string) (*DiffResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, docid := contentHash(body)
	title := deriveTitle(filepathValue, body)

	var existingHash string
	err := s.db.QueryRow(
		`SELECT content_hash FROM documents WHERE collection = ? AND filepath = ? AND active = 1`,
		collection, filepathValue,
	).Scan(&existingHash)

	switch {
	case err == nil && existingHash == hash:
		return &DiffResult{Unchanged: true, ContentHash: hash, Docid: docid}, nil
	case err == nil:
		tx, txErr := s.db.Begin()
		if txErr != nil {
			return nil, fmt.Errorf("begin transaction: %w", txErr)
		}
		if _, execErr := tx.Exec(
			`UPDATE documents SET active = 0 WHERE collection = ? AND filepath = ? AND active = 1`,
			collection, filepathValue,
		); execErr != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("deactivate previous document: %w", execErr)
		}
		if _, execErr := tx.Exec(
			`INSERT INTO documents(collection, filepath, title, content_hash, docid, body, active) VALUES (?, ?, ?, ?, ?, ?, 1)`,
			collection, filepathValue, title, hash, docid, body,
		); execErr != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("insert updated document: %w", execErr)
		}
		if commitErr := tx.Commit(); commitErr != nil {
			return nil, fmt.Errorf("commit updated document: %w", commitErr)
		}
		return &DiffResult{Updated: true, ContentHash: hash, Docid: docid}, nil
	default:
		if _, execErr := s.db.Exec(
			`INSERT INTO documents(collection, filepath, title, content_hash, docid, body, active) VALUES (?, ?, ?, ?, ?, ?, 1)`,
			collection, filepathValue, title, hash, docid, body,
		); execErr != nil {
			return nil, fmt.Errorf("insert new document: %w", execErr)
		}
		return &DiffResult{Added: true, ContentHash: hash, Docid: docid}, nil
	}
}

// scanDocument scans one documents row.
func scanDocument(scan func(dest ...any) error) (*Document, error) {
	var d Document
	var active int
	if err := scan(&d.ID, &d.Collection, &d.Filepath, &d.Title, &d.ContentHash, &d.Docid, &d.Body, &active); err != nil {
		return nil, err
	}
	d.Active = active == 1
	return &d, nil
}

// FindDocument resolves query against active documents: a query starting
// with "#" is matched against the docid, anything else against the exact
// filepath. A near-miss path is never returned as the document; when
// nothing matches, the result is a NotFoundResult whose suggestions are
// the 5 nearest active paths by edit distance (fewer if fewer exist).
func (s *Store) FindDocument(query string, includeBody bool) (*Document, *NotFoundResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const cols = `id, collection, filepath, title, content_hash, docid, body, active`

	if strings.HasPrefix(query, "#") {
		hashPrefix := strings.TrimPrefix(query, "#")
		rows, err := s.db.Query(
			fmt.Sprintf(`SELECT %s FROM documents WHERE active = 1 AND docid = ?`, cols), hashPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("query by docid: %w", err)
		}
		defer rows.Close()

		var matches []*Document
		for rows.Next() {
			d, scanErr := scanDocument(rows.Scan)
			if scanErr != nil {
				return nil, nil, fmt.Errorf("scan document: %w", scanErr)
			}
			matches = append(matches, d)
		}
		if err := rows.Err(); err != nil {
			return nil, nil, err
		}

		switch len(matches) {
		case 0:
			return nil, &NotFoundResult{Query: query, Suggestions: s.fuzzySuggestions(hashPrefix)}, nil
		case 1:
			if !includeBody {
				matches[0].Body = ""
			}
			return matches[0], nil, nil
		default:
			return nil, nil, qmderrors.Conflict(
				fmt.Sprintf("docid #%s is ambiguous across %d documents", hashPrefix, len(matches)), nil,
			).WithDetail("docid", hashPrefix)
		}
	}

	row := s.db.QueryRow(fmt.Sprintf(`SELECT %s FROM documents WHERE active = 1 AND filepath = ?`, cols), query)
	d, err := scanDocument(row.Scan)
	if err == nil {
		if !includeBody {
			d.Body = ""
		}
		return d, nil, nil
	}

	return nil, &NotFoundResult{Query: query, Suggestions: s.fuzzySuggestions(query)}, nil
}

// fuzzySuggestions returns up to 5 active filepaths nearest to query by
// edit distance.
func (s *Store) fuzzySuggestions(query string) []string {
	rows, err := s.db.Query(`SELECT filepath FROM documents WHERE active = 1`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	type candidate struct {
		path string
		dist int
	}
	var candidates []candidate
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			continue
		}
		candidates = append(candidates, candidate{path: p, dist: editDistance(query, p)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].path < candidates[j].path
	})

	limit := 5
	if len(candidates) < limit {
		limit = len(candidates)
	}
	suggestions := make([]string, 0, limit)
	for _, c := range candidates[:limit] {
		suggestions = append(suggestions, c.path)
	}
	return suggestions
}

// editDistance computes the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// FindDocuments resolves a glob pattern or comma-separated list of
// paths/#docids across all collections. Files whose
// body exceeds maxBytes (0 = unlimited) are reported as oversize errors
// rather than returned.
func (s *Store) FindDocuments(pattern string, includeBody bool, maxBytes int) (docs []*Document, errs []error, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const cols = `id, collection, filepath, title, content_hash, docid, body, active`

	var candidates []*Document
	if strings.ContainsAny(pattern, ",") || !strings.ContainsAny(pattern, "*?[") {
		parts := strings.Split(pattern, ",")
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			var row *sql.Rows
			if strings.HasPrefix(p, "#") {
				row, err = s.db.Query(fmt.Sprintf(`SELECT %s FROM documents WHERE active = 1 AND docid = ?`, cols), strings.TrimPrefix(p, "#"))
			} else {
				row, err = s.db.Query(fmt.Sprintf(`SELECT %s FROM documents WHERE active = 1 AND filepath = ?`, cols), p)
			}
			if err != nil {
				return nil, nil, fmt.Errorf("query candidates: %w", err)
			}
			for row.Next() {
				d, scanErr := scanDocument(row.Scan)
				if scanErr != nil {
					row.Close()
					return nil, nil, scanErr
				}
				candidates = append(candidates, d)
			}
			row.Close()
		}
	} else {
		rows, qerr := s.db.Query(fmt.Sprintf(`SELECT %s FROM documents WHERE active = 1`, cols))
		if qerr != nil {
			return nil, nil, fmt.Errorf("query all active: %w", qerr)
		}
		for rows.Next() {
			d, scanErr := scanDocument(rows.Scan)
			if scanErr != nil {
				rows.Close()
				return nil, nil, scanErr
			}
			if matched, _ := path.Match(pattern, d.Filepath); matched {
				candidates = append(candidates, d)
			}
		}
		rows.Close()
	}

	for _, d := range candidates {
		if maxBytes > 0 && len(d.Body) > maxBytes {
			errs = append(errs, qmderrors.Oversize(
				fmt.Sprintf("%s is %d bytes, exceeds max-bytes %d", d.Filepath, len(d.Body), maxBytes)).
				WithDetail("filepath", d.Filepath))
			continue
		}
		if !includeBody {
			d.Body = ""
		}
		docs = append(docs, d)
	}
	return docs, errs, nil
}

// DeleteInactive permanently removes inactive document rows, used by
// cleanup.
func (s *Store) DeleteInactive() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM documents WHERE active = 0`)
	if err != nil {
		return 0, fmt.Errorf("delete inactive documents: %w", err)
	}
	return res.RowsAffected()
}

// DeactivateMissing marks inactive every active document in collection
// whose filepath is not in present, used by update() to drop documents
// for files removed from disk. Returns the number deactivated.
func (s *Store) DeactivateMissing(collection string, present map[string]bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT filepath FROM documents WHERE collection = ? AND active = 1`, collection)
	if err != nil {
		return 0, fmt.Errorf("list active filepaths: %w", err)
	}
	var stale []string
	for rows.Next() {
		var fp string
		if scanErr := rows.Scan(&fp); scanErr != nil {
			rows.Close()
			return 0, scanErr
		}
		if !present[fp] {
			stale = append(stale, fp)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var count int64
	for _, fp := range stale {
		res, err := s.db.Exec(
			`UPDATE documents SET active = 0 WHERE collection = ? AND filepath = ? AND active = 1`,
			collection, fp)
		if err != nil {
			return count, fmt.Errorf("deactivate %s: %w", fp, err)
		}
		n, _ := res.RowsAffected()
		count += n
	}
	return count, nil
}

// ListActiveDocuments returns every active document, optionally
// restricted to one collection, used by embed() to enumerate what needs
// chunking (4.C).
func (s *Store) ListActiveDocuments(collection string) ([]*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const cols = `id, collection, filepath, title, content_hash, docid, body, active`
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE active = 1`, cols)
	args := []any{}
	if collection != "" {
		query += ` AND collection = ?`
		args = append(args, collection)
	}
	query += ` ORDER BY collection, filepath`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		d, scanErr := scanDocument(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan document: %w", scanErr)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetDocumentByContentHash resolves a content hash to its active document
// row, used to collapse vector-search chunk hits back to documents (4.F)
// and to pull excerpt text for reranking (4.H). Returns nil if the hash
// has no active document (a stale or orphaned vector).
func (s *Store) GetDocumentByContentHash(hash string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(
		`SELECT id, collection, filepath, title, content_hash, docid, body, active
		 FROM documents WHERE content_hash = ? AND active = 1`,
		hash,
	)
	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document by content hash: %w", err)
	}
	return doc, nil
}
