// Package budget derives per-request token budgets from a model's context
// size and validates that each request leaves room for a response.
package budget

import (
	"errors"
	"fmt"
	"math"

	"ai-processor/internal/tokens"
)

var (
	// ErrInvalidResponseRatio means response_ratio is outside (0, 1).
	ErrInvalidResponseRatio = errors.New("response_ratio must be between 0 and 1")
	// ErrInsufficientBudget means prompt + chunk + carried context leave no
	// tokens for the response.
	ErrInsufficientBudget = errors.New("not enough tokens available for the response")
)

// ChunkSize returns the usable token budget per request. A nil responseRatio
// selects embedding mode: no response is generated, so the full context is
// usable. Otherwise floor(maxTokens * (1 - ratio)) is reserved for input.
// Computed once per engine lifetime.
func ChunkSize(maxTokens int, responseRatio *float64) (int, error) {
	if responseRatio == nil {
		return maxTokens, nil
	}
	r := *responseRatio
	if r <= 0 || r >= 1 {
		return 0, fmt.Errorf("%w, got %v", ErrInvalidResponseRatio, r)
	}
	return int(math.Floor(float64(maxTokens) * (1 - r))), nil
}

// Reserved returns the token count left for the model's response after the
// prompt, the chunk and any carried continuity tokens. It fails with
// ErrInsufficientBudget when nothing is left; this is checked before every
// chat call so a request the model is guaranteed to truncate is never issued.
func Reserved(maxTokens int, prompt, chunk string, carried int) (int, error) {
	used := tokens.Count(prompt) + tokens.Count(chunk) + carried
	reserved := maxTokens - used
	if reserved <= 0 {
		return 0, fmt.Errorf("%w: %d tokens requested against a limit of %d", ErrInsufficientBudget, used, maxTokens)
	}
	return reserved, nil
}
