// Package store implements the single-SQLite-database index backing qmd:
// collections, documents, the FTS5 keyword index, per-provider vector
// namespaces, the LLM response cache, and small persisted settings.
package store

import "fmt"

// Collection is a named set of files rooted at a filesystem path.
type Collection struct {
	Name string
	Path string
	Mask string
}

// Document is a markdown file's indexed snapshot (3. DATA MODEL).
type Document struct {
	ID          int64
	Collection  string
	Filepath    string
	Title       string
	Body        string
	ContentHash string
	Docid       string
	Active      bool
}

// Chunk is a substring of a document used as one embedding input.
type Chunk struct {
	ContentHash string
	Seq         int
	Pos         int
	Model       string
	Text        string
}

// Vector is a fixed-length embedding associated with one chunk.
type Vector struct {
	ContentHash string
	Seq         int
	Embedding   []float32
}

// PathContext is free-text side information attached to a virtual path.
type PathContext struct {
	VPath string
	Text  string
}

// DiffResult reports the outcome of add_or_update_document.
type DiffResult struct {
	Added       bool
	Unchanged   bool
	Updated     bool
	ContentHash string
	Docid       string
}

// CollectionStats reports a collection's active document count for
// status(); chunks are counted only in Status.TotalChunks.
type CollectionStats struct {
	Name          string
	DocumentCount int
}

// ProviderVectorStats reports the vector count under one namespace for
// status().
type ProviderVectorStats struct {
	Namespace   string
	VectorCount int
}

// Status aggregates counts by collection, totals, and per-namespace vector
// counts (4.A status()).
type Status struct {
	Collections     []CollectionStats
	TotalDocuments  int
	TotalChunks     int
	VectorsByNS     []ProviderVectorStats
	ActiveProvider  string
	ActiveModel     string
}

// NotFoundResult is returned by FindDocument when no exact match exists;
// Suggestions holds 3-5 nearest-path candidates.
type NotFoundResult struct {
	Query       string
	Suggestions []string
}

// ErrDimensionMismatch is returned when a vector's length does not match
// the namespace's fixed dimension.
type ErrDimensionMismatch struct {
	Namespace string
	Expected  int
	Got       int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vector dimension mismatch in namespace %s: expected %d, got %d", e.Namespace, e.Expected, e.Got)
}
