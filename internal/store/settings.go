package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// GetSetting returns the value for key, and false if unset.
func (s *Store) GetSetting(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting upserts key=value, e.g. the active embedding_provider/model
// pair mutated by `provider set`.
func (s *Store) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO settings(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// cacheInputHash hashes an LLMCache input string to the stable key used
// alongside model+purpose.
func cacheInputHash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// GetLLMCache looks up a cached response for (model, purpose, input).
func (s *Store) GetLLMCache(model, purpose, input string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var response string
	err := s.db.QueryRow(
		`SELECT response FROM llm_cache WHERE model = ? AND purpose = ? AND input_hash = ?`,
		model, purpose, cacheInputHash(input),
	).Scan(&response)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get llm cache: %w", err)
	}
	return response, true, nil
}

// PutLLMCache writes a cached response for (model, purpose, input).
// Written once, read many; entries are evicted wholesale by
// DeleteLLMCache (cleanup).
func (s *Store) PutLLMCache(model, purpose, input, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO llm_cache(model, purpose, input_hash, response) VALUES (?, ?, ?, ?)
		 ON CONFLICT(model, purpose, input_hash) DO UPDATE SET response = excluded.response`,
		model, purpose, cacheInputHash(input), response)
	if err != nil {
		return fmt.Errorf("put llm cache: %w", err)
	}
	return nil
}

// DeleteLLMCache evicts the entire LLM cache, used by cleanup.
func (s *Store) DeleteLLMCache() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM llm_cache`)
	if err != nil {
		return 0, fmt.Errorf("delete llm cache: %w", err)
	}
	return res.RowsAffected()
}
