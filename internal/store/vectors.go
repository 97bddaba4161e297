package store

import (
	"fmt"
	"strings"

	"github.com/qmd-engine/qmd/internal/vector"
)

// EnsureVectorTable creates the vectors_vec_<namespace> table if absent
// and ensures an in-memory HNSW graph exists for it. Safe to call
// repeatedly (4.C provider namespace keys, 6. persisted schema).
func (s *Store) EnsureVectorTable(namespace string, dimensions int) error {
	s.mu.Lock()
	table := vectorTableName(namespace)
	_, err := s.db.Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (hash_seq TEXT PRIMARY KEY, embedding BLOB NOT NULL)`, table))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("create vector table %s: %w", table, err)
	}

	s.vecMu.Lock()
	defer s.vecMu.Unlock()
	if _, ok := s.graphs[namespace]; !ok {
		s.graphs[namespace] = vector.NewIndex(dimensions)
	}
	return nil
}

func hashSeqKey(contentHash string, seq int) string {
	return fmt.Sprintf("%s:%d", contentHash, seq)
}

// EmbeddedSeqs returns the set of chunk sequence numbers already recorded
// in content_vectors for (contentHash, model), letting embed() skip
// re-embedding chunks it has already produced vectors for.
func (s *Store) EmbeddedSeqs(contentHash, model string) (map[int]bool, error) {
	s.mu.Lock()
	rows, err := s.db.Query(
		`SELECT seq FROM content_vectors WHERE content_hash = ? AND model = ?`,
		contentHash, model)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("query embedded seqs: %w", err)
	}
	defer rows.Close()

	seqs := make(map[int]bool)
	for rows.Next() {
		var seq int
		if scanErr := rows.Scan(&seq); scanErr != nil {
			return nil, scanErr
		}
		seqs[seq] = true
	}
	return seqs, rows.Err()
}

// AddChunk records a chunk's position/model metadata in content_vectors.
func (s *Store) AddChunk(c Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO content_vectors(content_hash, seq, pos, model) VALUES (?, ?, ?, ?)`,
		c.ContentHash, c.Seq, c.Pos, c.Model)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// AddVector persists embedding for (contentHash, seq) under namespace and
// updates the in-memory k-NN graph. EnsureVectorTable must be called
// first for this namespace.
func (s *Store) AddVector(namespace, contentHash string, seq int, embedding []float32) error {
	key := hashSeqKey(contentHash, seq)

	s.mu.Lock()
	table := vectorTableName(namespace)
	_, err := s.db.Exec(
		fmt.Sprintf(`INSERT OR REPLACE INTO %s(hash_seq, embedding) VALUES (?, ?)`, table),
		key, vector.EncodeFloat32(embedding))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("insert vector into %s: %w", table, err)
	}

	s.vecMu.Lock()
	idx, ok := s.graphs[namespace]
	if !ok {
		idx = vector.NewIndex(len(embedding))
		s.graphs[namespace] = idx
	}
	s.vecMu.Unlock()

	if addErr := idx.Add(key, embedding); addErr != nil {
		return ErrDimensionMismatch{Namespace: namespace, Expected: idx.Dimensions(), Got: len(embedding)}
	}
	return nil
}

// VectorSearchResult is one namespaced k-NN hit, resolved back to its
// owning content hash and chunk sequence.
type VectorSearchResult struct {
	ContentHash string
	Seq         int
	Score       float32
}

// VectorSearch performs k-NN search against namespace's in-memory graph.
func (s *Store) VectorSearch(namespace string, query []float32, k int) ([]VectorSearchResult, error) {
	s.vecMu.Lock()
	idx, ok := s.graphs[namespace]
	s.vecMu.Unlock()
	if !ok {
		return nil, nil
	}

	hits, err := idx.Search(query, k)
	if err != nil {
		return nil, err
	}

	results := make([]VectorSearchResult, 0, len(hits))
	for _, h := range hits {
		hash, seq, ok := splitHashSeq(h.ID)
		if !ok {
			continue
		}
		results = append(results, VectorSearchResult{ContentHash: hash, Seq: seq, Score: h.Score})
	}
	return results, nil
}

func splitHashSeq(key string) (hash string, seq int, ok bool) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return "", 0, false
	}
	hash = key[:idx]
	var n int
	if _, err := fmt.Sscanf(key[idx+1:], "%d", &n); err != nil {
		return "", 0, false
	}
	return hash, n, true
}

// CleanupOrphanedVectors removes content_vectors and vectors_vec_* rows
// (and their in-memory graph entries) whose content_hash has no active
// document, enforcing the invariant that vector tables contain only
// chunks of active documents.
func (s *Store) CleanupOrphanedVectors() (int64, error) {
	s.mu.Lock()
	rows, err := s.db.Query(`
		SELECT DISTINCT content_hash, seq, model FROM content_vectors
		WHERE content_hash NOT IN (SELECT content_hash FROM documents WHERE active = 1)
	`)
	if err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("find orphaned vectors: %w", err)
	}

	type orphan struct {
		hash  string
		seq   int
		model string
	}
	var orphans []orphan
	for rows.Next() {
		var o orphan
		if scanErr := rows.Scan(&o.hash, &o.seq, &o.model); scanErr != nil {
			rows.Close()
			s.mu.Unlock()
			return 0, scanErr
		}
		orphans = append(orphans, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		s.mu.Unlock()
		return 0, err
	}

	res, err := s.db.Exec(`DELETE FROM content_vectors WHERE content_hash NOT IN (SELECT content_hash FROM documents WHERE active = 1)`)
	s.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("delete orphaned content_vectors: %w", err)
	}
	affected, _ := res.RowsAffected()

	for _, o := range orphans {
		namespace := NamespaceFromModel(o.model)
		key := hashSeqKey(o.hash, o.seq)

		s.mu.Lock()
		table := vectorTableName(namespace)
		_, _ = s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE hash_seq = ?`, table), key)
		s.mu.Unlock()

		s.vecMu.Lock()
		if idx, ok := s.graphs[namespace]; ok {
			idx.Remove(key)
		}
		s.vecMu.Unlock()
	}

	return affected, nil
}

// VectorCountByNamespace reports the live vector count for every known
// namespace, used by status().
func (s *Store) VectorCountByNamespace() []ProviderVectorStats {
	s.vecMu.Lock()
	defer s.vecMu.Unlock()

	stats := make([]ProviderVectorStats, 0, len(s.graphs))
	for ns, idx := range s.graphs {
		stats = append(stats, ProviderVectorStats{Namespace: ns, VectorCount: idx.Len()})
	}
	return stats
}
