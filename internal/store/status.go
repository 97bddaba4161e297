package store

import "fmt"

// GetStatus aggregates active document counts by collection, total
// document and chunk counts, vector counts by namespace, and the active
// provider/model (4.A status()).
func (s *Store) GetStatus() (*Status, error) {
	s.mu.Lock()
	rows, err := s.db.Query(`
		SELECT collection, COUNT(*) FROM documents WHERE active = 1 GROUP BY collection ORDER BY collection`)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("collection stats: %w", err)
	}
	var collections []CollectionStats
	for rows.Next() {
		var c CollectionStats
		if scanErr := rows.Scan(&c.Name, &c.DocumentCount); scanErr != nil {
			rows.Close()
			s.mu.Unlock()
			return nil, scanErr
		}
		collections = append(collections, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	var totalDocs, totalChunks int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM documents WHERE active = 1`).Scan(&totalDocs); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("total documents: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM content_vectors`).Scan(&totalChunks); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("total chunks: %w", err)
	}
	s.mu.Unlock()

	provider, _, _ := s.GetSetting("embedding_provider")
	model, _, _ := s.GetSetting("embedding_model")

	return &Status{
		Collections:    collections,
		TotalDocuments: totalDocs,
		TotalChunks:    totalChunks,
		VectorsByNS:    s.VectorCountByNamespace(),
		ActiveProvider: provider,
		ActiveModel:    model,
	}, nil
}
