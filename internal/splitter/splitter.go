// Package splitter partitions oversized text into an ordered sequence of
// chunks, each fitting a token budget. Splitting is greedy and
// order-preserving: lines first, words for lines that exceed the budget
// on their own.
package splitter

import (
	"errors"
	"fmt"
	"strings"

	"ai-processor/internal/tokens"
)

// ErrChunkTooSmall means the budget left after reserving continuity tokens
// is zero or negative, so no text can be packed at all.
var ErrChunkTooSmall = errors.New("effective chunk size is too small to process further")

// Splitter splits text against a fixed token budget per chunk.
type Splitter struct {
	// ChunkSize is the token budget for a single chunk.
	ChunkSize int
}

// New returns a Splitter with the given per-chunk token budget.
func New(chunkSize int) *Splitter {
	return &Splitter{ChunkSize: chunkSize}
}

// Split partitions content into chunks that fit the budget. When
// includeLastChunk is set, the token cost of lastChunkEnd is subtracted from
// the budget so the continuity tail fits alongside each chunk in the prompt.
//
// Lines are packed greedily into the current chunk; a line whose own token
// count exceeds the budget is split into words, which are packed the same
// way. Accumulated parts are joined with single spaces, so the only loss
// across a split boundary is whitespace normalization. Empty input yields no
// chunks. A single word larger than the whole budget still becomes its own
// chunk rather than being dropped.
func (s *Splitter) Split(content, lastChunkEnd string, includeLastChunk bool) ([]string, error) {
	effective := s.ChunkSize
	if includeLastChunk {
		effective -= tokens.Count(lastChunkEnd)
	}
	if effective <= 0 {
		return nil, fmt.Errorf("%w: %d tokens", ErrChunkTooSmall, effective)
	}
	if content == "" {
		return nil, nil
	}

	var (
		chunks  []string
		current []string
		count   int
	)

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			count = 0
		}
	}

	for _, line := range strings.Split(content, "\n") {
		lineCount := tokens.Count(line)

		switch {
		case lineCount > effective:
			// oversized line: fall back to word packing
			for _, word := range strings.Fields(line) {
				wordCount := tokens.Count(word)
				if count+wordCount > effective {
					flush()
				}
				current = append(current, word)
				count += wordCount
			}
		case count+lineCount > effective:
			flush()
			current = append(current, line)
			count = lineCount
		default:
			current = append(current, line)
			count += lineCount
		}
	}
	flush()

	return chunks, nil
}
