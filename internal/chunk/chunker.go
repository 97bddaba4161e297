package chunk

import (
	"math"
	"unicode/utf8"
)

// Split divides text into overlapping chunks per policy. Chunks cover the
// entire input; consecutive chunks overlap by policy.OverlapFraction of the
// target size. Empty input produces zero chunks; input shorter than one
// chunk produces a single chunk at Pos=0.
func Split(text string, policy Policy) ([]Chunk, error) {
	if text == "" {
		return nil, nil
	}

	if policy.HasTokenizer {
		return splitByTokens(text, policy)
	}
	return splitByRunes(text, policy), nil
}

func splitByRunes(text string, policy Policy) []Chunk {
	target := policy.CharTarget
	if target <= 0 {
		target = 3200
	}
	overlap := int(math.Round(float64(target) * policy.OverlapFraction))
	if overlap >= target {
		overlap = target - 1
	}
	step := target - overlap
	if step <= 0 {
		step = target
	}

	offsets := runeByteOffsets(text)
	numRunes := len(offsets) - 1

	if numRunes <= target {
		return []Chunk{{Pos: 0, Text: text}}
	}

	var chunks []Chunk
	start := 0
	for start < numRunes {
		end := start + target
		if end > numRunes {
			end = numRunes
		}
		chunks = append(chunks, Chunk{
			Pos:  start,
			Text: text[offsets[start]:offsets[end]],
		})
		if end >= numRunes {
			break
		}
		start += step
	}
	return chunks
}

// runeByteOffsets returns the byte offset of each rune in text, with a
// trailing entry for len(text) so that offsets[i:i+1] bounds rune i.
func runeByteOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	i := 0
	for i < len(text) {
		offsets = append(offsets, i)
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	offsets = append(offsets, len(text))
	return offsets
}

func splitByTokens(text string, policy Policy) ([]Chunk, error) {
	target := policy.TokenTarget
	if target <= 0 {
		target = 800
	}
	overlap := int(math.Round(float64(target) * policy.OverlapFraction))
	if overlap >= target {
		overlap = target - 1
	}
	step := target - overlap
	if step <= 0 {
		step = target
	}

	enc, err := encodingForModel(policy.TokenizerModel)
	if err != nil {
		return nil, err
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= target {
		return []Chunk{{Pos: 0, Text: text}}, nil
	}

	var chunks []Chunk
	start := 0
	for start < len(tokens) {
		end := start + target
		if end > len(tokens) {
			end = len(tokens)
		}
		prefixRunes := 0
		if start > 0 {
			prefixRunes = utf8.RuneCountInString(enc.Decode(tokens[:start]))
		}
		chunks = append(chunks, Chunk{
			Pos:  prefixRunes,
			Text: enc.Decode(tokens[start:end]),
		})
		if end >= len(tokens) {
			break
		}
		start += step
	}
	return chunks, nil
}
