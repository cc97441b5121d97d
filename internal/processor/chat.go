package processor

import (
	"context"
	"fmt"
	"strings"

	"ai-processor/internal/budget"
	"ai-processor/internal/helper"
	"ai-processor/internal/models"
	"ai-processor/internal/splitter"
	"ai-processor/internal/tokens"
)

// Chat processes a single oversized text as an ordered sequence of chunks,
// one chat-completion call per chunk, optionally carrying the tail of each
// response into the next chunk's prompt.
type Chat struct {
	engine
}

// NewChat builds a chat engine. responseRatio must be inside (0, 1) when
// set; the part of maxTokens it names is reserved for responses and the rest
// becomes the per-chunk budget.
func NewChat(modelName string, maxTokens int, responseRatio *float64, caller ModelCaller, opts ...Option) (*Chat, error) {
	e, err := newEngine(modelName, maxTokens, responseRatio, caller, opts...)
	if err != nil {
		return nil, err
	}
	return &Chat{engine: e}, nil
}

// Process splits content once, then walks the chunks in order. Chunk 1 uses
// prompts.Initial verbatim; later chunks substitute the current continuity
// tail into prompts.FollowUpTemplate. Every call is preceded by a
// reservation check; any failure aborts the whole run with no partial
// results, since a budget violation mid-run indicates a configuration
// problem rather than a transient one.
func (p *Chat) Process(ctx context.Context, content string, prompts models.Prompts, opts models.ChatOptions) (*models.Outcome, error) {
	chunks, err := splitter.New(p.chunkSize).Split(content, "", opts.IncludeLastChunk)
	if err != nil {
		return nil, err
	}
	p.logChunkDetails(chunks)

	tailBudget := opts.LastChunkTokenCount
	if tailBudget <= 0 {
		tailBudget = models.DefaultLastChunkTokens
	}

	// continuity state threaded through the loop, never stored on p
	var (
		results      = make([]models.Result, 0, len(chunks))
		lastChunkEnd string
		carried      int
	)

	for i, chunk := range chunks {
		p.logger.Info().Msgf("Processing chunk %d/%d", i+1, len(chunks))

		prompt := prompts.Initial
		if i > 0 {
			prompt = strings.ReplaceAll(prompts.FollowUpTemplate, models.LastChunkEndPlaceholder, lastChunkEnd)
		}

		promptTokens := tokens.Count(prompt)
		chunkTokens := tokens.Count(chunk)
		reserved, err := budget.Reserved(p.maxTokens, prompt, chunk, carried)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i+1, err)
		}

		p.logger.Debug().
			Int("chunk_tokens", chunkTokens).
			Int("prompt_tokens", promptTokens).
			Int("total_request_tokens", promptTokens+chunkTokens+carried).
			Int("reserved_tokens", reserved).
			Msgf("Token details for chunk %d", i+1)
		p.logger.Debug().Msgf("Prompt preview: %s", helper.Truncate(prompt, 50))
		p.logger.Debug().Msgf("Chunk preview: %s", helper.Truncate(chunk, 50))

		responseText, err := p.caller.ChatComplete(ctx, prompt, chunk, p.chunkSize)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i+1, err)
		}

		results = append(results, models.Result{
			Index:        i + 1,
			InputText:    chunk,
			ResponseText: responseText,
		})
		p.notify(models.ChunkEvent{
			Index:          i + 1,
			Total:          len(chunks),
			PromptTokens:   promptTokens,
			ChunkTokens:    chunkTokens,
			CarriedTokens:  carried,
			ReservedTokens: reserved,
		})

		if opts.IncludeLastChunk {
			lastChunkEnd = ExtractTail(responseText, tailBudget)
			carried = tokens.Count(lastChunkEnd)
		}
	}

	return &models.Outcome{Status: models.StatusSuccess, Results: results}, nil
}
