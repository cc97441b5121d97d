package splitter

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"ai-processor/internal/tokens"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name             string
		chunkSize        int
		content          string
		lastChunkEnd     string
		includeLastChunk bool
		expected         []string
		wantErr          error
	}{
		{
			name:      "empty input yields no chunks",
			chunkSize: 100,
			content:   "",
			expected:  nil,
		},
		{
			name:      "single short line",
			chunkSize: 100,
			content:   "Hi!",
			expected:  []string{"Hi!"},
		},
		{
			name:      "lines packed greedily",
			chunkSize: 4,
			content:   "aa bb\ncc dd\nee ff",
			expected:  []string{"aa bb cc dd", "ee ff"},
		},
		{
			name:      "oversized line falls back to words",
			chunkSize: 3,
			content:   "one two three four five",
			expected:  []string{"one two three", "four five"},
		},
		{
			name:      "single word larger than the budget",
			chunkSize: 2,
			content:   "supercalifragilisticexpialidocious",
			expected:  []string{"supercalifragilisticexpialidocious"},
		},
		{
			name:             "tail tokens shrink the budget",
			chunkSize:        4,
			content:          "aa bb\ncc dd",
			lastChunkEnd:     "tail one",
			includeLastChunk: true,
			expected:         []string{"aa bb", "cc dd"},
		},
		{
			name:             "tail ignored when not included",
			chunkSize:        4,
			content:          "aa bb\ncc dd",
			lastChunkEnd:     strings.Repeat("tail ", 20),
			includeLastChunk: false,
			expected:         []string{"aa bb cc dd"},
		},
		{
			name:             "tail consumes the whole budget",
			chunkSize:        10,
			content:          "anything",
			lastChunkEnd:     strings.Repeat("tail ", 20),
			includeLastChunk: true,
			wantErr:          ErrChunkTooSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New(tt.chunkSize).Split(tt.content, tt.lastChunkEnd, tt.includeLastChunk)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Split() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Split() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Split() = %q, want %q", result, tt.expected)
			}
		})
	}
}

// Rejoining the chunks must reproduce the source text up to whitespace
// normalization at split points.
func TestSplitRejoin(t *testing.T) {
	texts := []string{
		"The quick brown fox\njumps over the lazy dog.\nPack my box with five dozen liquor jugs.",
		"one two three four five six seven eight nine ten",
		"short\n\nlines\nwith\n\nblanks",
		strings.Repeat("word ", 200),
	}

	for _, text := range texts {
		for _, chunkSize := range []int{3, 5, 10, 100} {
			chunks, err := New(chunkSize).Split(text, "", false)
			if err != nil {
				t.Fatalf("Split(%d) unexpected error: %v", chunkSize, err)
			}
			got := strings.Fields(strings.Join(chunks, " "))
			want := strings.Fields(text)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Split(%d) rejoin = %q, want %q", chunkSize, got, want)
			}
		}
	}
}

// Every chunk must fit the budget; the only exception is a single atomic
// word that exceeds it on its own.
func TestSplitBudgetBound(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog.\n" +
		strings.Repeat("line with a handful of words\n", 30)

	for _, chunkSize := range []int{4, 8, 16} {
		chunks, err := New(chunkSize).Split(text, "", false)
		if err != nil {
			t.Fatalf("Split(%d) unexpected error: %v", chunkSize, err)
		}
		if len(chunks) == 0 {
			t.Fatalf("Split(%d) produced no chunks", chunkSize)
		}
		for i, chunk := range chunks {
			if chunk == "" {
				t.Errorf("Split(%d) chunk %d is empty", chunkSize, i)
			}
			if n := tokens.Count(chunk); n > chunkSize && len(strings.Fields(chunk)) > 1 {
				t.Errorf("Split(%d) chunk %d has %d tokens", chunkSize, i, n)
			}
		}
	}
}
