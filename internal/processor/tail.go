package processor

import (
	"slices"
	"strings"

	"ai-processor/internal/tokens"
)

// ExtractTail returns the trailing words of text whose combined token
// estimate stays within maxTailTokens, rejoined in original order with
// single spaces. The word that would exceed the bound is discarded along
// with everything before it. Used to seed the next chunk's follow-up prompt
// so consecutive responses stay contextually connected.
func ExtractTail(text string, maxTailTokens int) string {
	words := strings.Fields(text)

	var kept []string
	count := 0
	for i := len(words) - 1; i >= 0; i-- {
		wordTokens := tokens.Count(words[i])
		if count+wordTokens > maxTailTokens {
			break
		}
		kept = append(kept, words[i])
		count += wordTokens
	}

	slices.Reverse(kept)
	return strings.Join(kept, " ")
}
