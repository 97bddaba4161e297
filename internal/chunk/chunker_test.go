package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyInputProducesZeroChunks(t *testing.T) {
	chunks, err := Split("", DefaultCharPolicy())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitShortInputProducesSingleChunkAtZero(t *testing.T) {
	text := "a short document body"
	chunks, err := Split(text, DefaultCharPolicy())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Pos)
	assert.Equal(t, text, chunks[0].Text)
}

func TestSplitByRunesCoversEntireInputWithOverlap(t *testing.T) {
	policy := Policy{CharTarget: 100, OverlapFraction: 0.15}
	text := strings.Repeat("0123456789", 50) // 500 chars

	chunks, err := Split(text, policy)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, 0, chunks[0].Pos)
	for i := 1; i < len(chunks); i++ {
		assert.Less(t, chunks[i-1].Pos, chunks[i].Pos)
	}

	last := chunks[len(chunks)-1]
	assert.Equal(t, text[len(text)-len(last.Text):], last.Text)

	for _, c := range chunks {
		assert.Contains(t, text, c.Text)
	}
}

func TestSplitByRunesNeverSplitsAMultiByteRune(t *testing.T) {
	policy := Policy{CharTarget: 10, OverlapFraction: 0.15}
	text := strings.Repeat("héllo wörld ", 10)

	chunks, err := Split(text, policy)
	require.NoError(t, err)
	for _, c := range chunks {
		for _, r := range c.Text {
			assert.NotEqual(t, rune(0xFFFD), r, "chunk text must not contain the replacement rune")
		}
	}
}

func TestSplitPreservesVerbatimText(t *testing.T) {
	text := "  leading and trailing whitespace preserved  \n\ttabs too"
	chunks, err := Split(text, DefaultCharPolicy())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}

func TestRuneByteOffsetsMatchesRuneCount(t *testing.T) {
	text := "héllo"
	offsets := runeByteOffsets(text)
	assert.Len(t, offsets, len([]rune(text))+1)
	assert.Equal(t, len(text), offsets[len(offsets)-1])
}
