package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default number of embeddings kept in the
// process-local LRU, separate from the persistent per-chunk vectors in
// the store. It mainly absorbs repeated identical queries within one
// query() or hybrid pipeline run (the original query is embedded once
// per OriginalWeight copy, and expansion variants often echo terms back).
const DefaultCacheSize = 1000

// CachedEmbedder wraps an Embedder with an in-process LRU so identical
// (task, text) pairs skip the provider round trip within a process
// lifetime. It does not replace the store's persistent chunk vectors.
// Both query and document embeddings pass through it (keyed by task), so
// an embed() run fills it with chunk vectors as well.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps inner with an LRU of the given size (falls
// back to DefaultCacheSize when size <= 0).
func NewCachedEmbedder(inner Embedder, size int) *CachedEmbedder {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, []float32](size)
	return &CachedEmbedder{inner: inner, cache: cache}
}

func (c *CachedEmbedder) cacheKey(text string, task TaskType) string {
	combined := c.inner.Name() + "\x00" + c.inner.ModelID() + "\x00" + string(rune('0'+task)) + "\x00" + text
	hash := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(hash[:])
}

func (c *CachedEmbedder) Name() string                  { return c.inner.Name() }
func (c *CachedEmbedder) ModelID() string                { return c.inner.ModelID() }
func (c *CachedEmbedder) Dimensions() int                { return c.inner.Dimensions() }
func (c *CachedEmbedder) HasTokenizer() bool             { return c.inner.HasTokenizer() }
func (c *CachedEmbedder) FormatQuery(text string) string { return c.inner.FormatQuery(text) }
func (c *CachedEmbedder) FormatDocument(text string) string {
	return c.inner.FormatDocument(text)
}
func (c *CachedEmbedder) Close() error { return c.inner.Close() }

// Embed returns the cached vector when present, otherwise delegates and
// caches the result.
func (c *CachedEmbedder) Embed(ctx context.Context, text string, task TaskType) ([]float32, error) {
	key := c.cacheKey(text, task)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}
	vec, err := c.inner.Embed(ctx, text, task)
	if err != nil {
		return nil, err
	}
	if vec != nil {
		c.cache.Add(key, vec)
	}
	return vec, nil
}

// EmbedBatch checks the cache per-text, only sending cache misses to the
// provider, and caches each new result individually.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		key := c.cacheKey(text, task)
		if vec, ok := c.cache.Get(key); ok {
			results[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, missTexts, task)
	if err != nil {
		return nil, err
	}

	for j, idx := range missIdx {
		if j >= len(fresh) || fresh[j] == nil {
			continue
		}
		results[idx] = fresh[j]
		c.cache.Add(c.cacheKey(texts[idx], task), fresh[j])
	}
	return results, nil
}

// Inner returns the wrapped embedder, for callers that need the
// underlying provider's identity past the cache.
func (c *CachedEmbedder) Inner() Embedder { return c.inner }

var _ Embedder = (*CachedEmbedder)(nil)
