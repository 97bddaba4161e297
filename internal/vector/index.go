// Package vector wraps coder/hnsw into a per-namespace k-NN index keyed
// by string ids ("<content_hash>:<seq>"), the way internal/store's
// vectors_vec_<provider>_<model> tables are searched in memory (4.F).
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/coder/hnsw"
)

// Index is one namespace's in-memory HNSW graph plus its string-id
// mapping, grounded on the teacher's HNSWStore.
type Index struct {
	mu         sync.RWMutex
	graph      *hnsw.Graph[uint64]
	dimensions int

	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64
}

// Result is one k-NN hit: the string id, its cosine distance, and
// Score = 1/(1+Distance), which is 1 for an identical direction.
type Result struct {
	ID       string
	Distance float32
	Score    float32
}

// NewIndex creates an empty cosine-distance HNSW graph for the given
// fixed dimensionality.
func NewIndex(dimensions int) *Index {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	return &Index{
		graph:      graph,
		dimensions: dimensions,
		idMap:      make(map[string]uint64),
		keyMap:     make(map[uint64]string),
	}
}

// Dimensions returns the fixed vector length for this namespace.
func (idx *Index) Dimensions() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dimensions
}

// Add inserts or replaces the vector for id. Replacement uses lazy
// deletion (orphaning the old graph node) to avoid coder/hnsw's
// last-node-deletion issue, exactly as the teacher's HNSWStore does.
func (idx *Index) Add(id string, v []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dimensions == 0 {
		idx.dimensions = len(v)
	}
	if len(v) != idx.dimensions {
		return fmt.Errorf("vector dimension mismatch: expected %d, got %d", idx.dimensions, len(v))
	}

	if existingKey, ok := idx.idMap[id]; ok {
		delete(idx.keyMap, existingKey)
		delete(idx.idMap, id)
	}

	key := idx.nextKey
	idx.nextKey++

	normalized := make([]float32, len(v))
	copy(normalized, v)
	normalizeInPlace(normalized)

	idx.graph.Add(hnsw.MakeNode(key, normalized))
	idx.idMap[id] = key
	idx.keyMap[key] = id
	return nil
}

// Remove lazily deletes id from the index.
func (idx *Index) Remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if key, ok := idx.idMap[id]; ok {
		delete(idx.keyMap, key)
		delete(idx.idMap, id)
	}
}

// Search returns up to k nearest neighbours to query, ranked by cosine
// similarity.
func (idx *Index) Search(query []float32, k int) ([]Result, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("vector dimension mismatch: expected %d, got %d", idx.dimensions, len(query))
	}
	if idx.graph.Len() == 0 {
		return nil, nil
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	normalizeInPlace(normalized)

	nodes := idx.graph.Search(normalized, k)
	results := make([]Result, 0, len(nodes))
	for _, node := range nodes {
		id, ok := idx.keyMap[node.Key]
		if !ok {
			continue // lazily-deleted orphan
		}
		distance := idx.graph.Distance(normalized, node.Value)
		results = append(results, Result{
			ID:       id,
			Distance: distance,
			Score:    1.0 / (1.0 + distance),
		})
	}
	return results, nil
}

// Len returns the number of live (non-orphaned) vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.idMap)
}

func normalizeInPlace(v []float32) {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}

// EncodeFloat32 serializes a float32 vector to little-endian bytes for
// storage in a vectors_vec_<namespace> BLOB column.
func EncodeFloat32(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

// DecodeFloat32 deserializes bytes produced by EncodeFloat32.
func DecodeFloat32(b []byte) []float32 {
	n := len(b) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
