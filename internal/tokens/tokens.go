package tokens

import (
	"regexp"
	"unicode/utf8"
)

// tokens are maximal runs of word characters, or single punctuation marks
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+|[^\p{L}\p{N}_\s\p{Z}]`)

// runesPerToken is the approximate number of characters per model token.
// This is a language-agnostic heuristic, not a real tokenizer.
const runesPerToken = 5

// Count estimates the number of model tokens in text. Each word run or
// punctuation mark costs max(1, runes/5). Empty text counts as zero.
func Count(text string) int {
	if text == "" {
		return 0
	}
	total := 0
	for _, tok := range tokenRe.FindAllString(text, -1) {
		n := utf8.RuneCountInString(tok) / runesPerToken
		if n < 1 {
			n = 1
		}
		total += n
	}
	return total
}
