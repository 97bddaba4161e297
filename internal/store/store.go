package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"github.com/qmd-engine/qmd/internal/vector"
)

// Store is the single SQLite-backed index: collections, documents, the
// FTS5 keyword index, per-provider vector namespaces, the LLM cache and
// settings. Every database access, read or write, holds mu (4.A), so
// reads are serialized too; the in-memory vector graphs use vecMu.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	lock   *flock.Flock
	closed bool

	vecMu  sync.Mutex
	graphs map[string]*vector.Index
}

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	mask TEXT NOT NULL DEFAULT '**/*.md'
);

CREATE TABLE IF NOT EXISTS path_contexts (
	vpath TEXT PRIMARY KEY,
	text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	filepath TEXT NOT NULL,
	title TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	docid TEXT NOT NULL,
	body TEXT NOT NULL,
	active INTEGER NOT NULL DEFAULT 1
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_active_path
	ON documents(collection, filepath) WHERE active = 1;
CREATE INDEX IF NOT EXISTS idx_documents_docid ON documents(docid);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);

CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
	title,
	body,
	content='documents',
	content_rowid='id',
	tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
	INSERT INTO documents_fts(rowid, title, body) VALUES (new.id, new.title, new.body);
END;
CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
	INSERT INTO documents_fts(documents_fts, rowid, title, body) VALUES ('delete', old.id, old.title, old.body);
END;
CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
	INSERT INTO documents_fts(documents_fts, rowid, title, body) VALUES ('delete', old.id, old.title, old.body);
	INSERT INTO documents_fts(rowid, title, body) VALUES (new.id, new.title, new.body);
END;

CREATE TABLE IF NOT EXISTS content_vectors (
	content_hash TEXT NOT NULL,
	seq INTEGER NOT NULL,
	pos INTEGER NOT NULL,
	model TEXT NOT NULL,
	PRIMARY KEY (content_hash, seq, model)
);

CREATE TABLE IF NOT EXISTS llm_cache (
	model TEXT NOT NULL,
	purpose TEXT NOT NULL,
	input_hash TEXT NOT NULL,
	response TEXT NOT NULL,
	PRIMARY KEY (model, purpose, input_hash)
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// namespacePattern matches the punctuation qmd folds to '_' when building
// a provider/model storage namespace key (4.C).
var namespacePattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// NamespaceKey builds the storage namespace for a provider/model pair,
// e.g. "openai/text-embedding-3-large" -> "openai_text_embedding_3_large".
func NamespaceKey(provider, modelID string) string {
	return NamespaceFromModel(provider + "/" + modelID)
}

// NamespaceFromModel folds a "<provider>/<model-id>" string (as stored in
// content_vectors.model) into its vectors_vec_<namespace> table suffix.
func NamespaceFromModel(model string) string {
	return strings.Trim(namespacePattern.ReplaceAllString(model, "_"), "_")
}

func vectorTableName(namespace string) string {
	return "vectors_vec_" + namespace
}

// Open opens (creating if absent) the SQLite index at path. Pass ":memory:"
// for an in-process index, matching the teacher's test convention.
func Open(path string) (*Store, error) {
	var dsn string
	var fileLock *flock.Flock

	if path == ":memory:" || path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create index directory %s: %w", dir, err)
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
		fileLock = flock.New(path + ".lock")
		locked, err := fileLock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire index lock: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("index %s is locked by another qmd process", path)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		if fileLock != nil {
			_ = fileLock.Unlock()
		}
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			if fileLock != nil {
				_ = fileLock.Unlock()
			}
			return nil, fmt.Errorf("failed to set pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		if fileLock != nil {
			_ = fileLock.Unlock()
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &Store{
		db:     db,
		path:   path,
		lock:   fileLock,
		graphs: make(map[string]*vector.Index),
	}

	if err := s.hydrateVectorGraphs(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to hydrate vector graphs: %w", err)
	}

	return s, nil
}

// hydrateVectorGraphs rebuilds the in-memory HNSW graph for every
// vectors_vec_* table already present in the database, so an existing
// index survives process restart.
func (s *Store) hydrateVectorGraphs() error {
	rows, err := s.db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name LIKE 'vectors_vec_%'`)
	if err != nil {
		return err
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, table := range tables {
		ns := strings.TrimPrefix(table, "vectors_vec_")
		if err := s.loadVectorGraph(ns, table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadVectorGraph(namespace, table string) error {
	vrows, err := s.db.Query(fmt.Sprintf(`SELECT hash_seq, embedding FROM %s`, table)) //nolint:gosec // table name is internally derived
	if err != nil {
		return err
	}
	defer vrows.Close()

	var idx *vector.Index
	for vrows.Next() {
		var hashSeq string
		var blob []byte
		if err := vrows.Scan(&hashSeq, &blob); err != nil {
			return err
		}
		vec := vector.DecodeFloat32(blob)
		if idx == nil {
			idx = vector.NewIndex(len(vec))
		}
		if err := idx.Add(hashSeq, vec); err != nil {
			slog.Warn("vector_graph_hydrate_skip", slog.String("namespace", namespace), slog.String("error", err.Error()))
		}
	}
	if idx != nil {
		s.vecMu.Lock()
		s.graphs[namespace] = idx
		s.vecMu.Unlock()
	}
	return vrows.Err()
}

// Close releases the database connection and file lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		err = s.db.Close()
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return err
}
