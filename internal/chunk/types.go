// Package chunk splits document bodies into overlapping retrieval units.
package chunk

// Chunk is one retrievable slice of a document body.
type Chunk struct {
	Pos  int    // character offset of the chunk start in the original text
	Text string // verbatim text, no normalization
}

// Policy configures how a body is split into chunks.
type Policy struct {
	// HasTokenizer selects the token-based policy when true, the
	// character-based policy otherwise.
	HasTokenizer bool

	// TokenizerModel names the tiktoken encoding to use for the
	// token-based policy (see encodingForModel). Ignored when
	// HasTokenizer is false.
	TokenizerModel string

	TokenTarget     int     // target tokens per chunk (token-based policy)
	CharTarget      int     // target characters per chunk (character-based policy)
	OverlapFraction float64 // fraction of the target that consecutive chunks overlap by
}

// DefaultTokenPolicy targets ~800 tokens with ~15% overlap.
func DefaultTokenPolicy(model string) Policy {
	return Policy{
		HasTokenizer:    true,
		TokenizerModel:  model,
		TokenTarget:     800,
		OverlapFraction: 0.15,
	}
}

// DefaultCharPolicy targets ~3200 characters with ~15% overlap.
func DefaultCharPolicy() Policy {
	return Policy{
		HasTokenizer:    false,
		CharTarget:      3200,
		OverlapFraction: 0.15,
	}
}
