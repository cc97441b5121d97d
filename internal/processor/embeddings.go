package processor

import (
	"context"
	"fmt"

	"ai-processor/internal/models"
)

// Embeddings processes independent messages, one embedding call each. No
// state is carried between messages and no chunking is applied; callers
// split oversized inputs themselves (see the splitter package).
type Embeddings struct {
	engine
}

// NewEmbeddings builds an embedding engine. No response is generated in this
// mode, so the full maxTokens budget is usable per request.
func NewEmbeddings(modelName string, maxTokens int, caller ModelCaller, opts ...Option) (*Embeddings, error) {
	e, err := newEngine(modelName, maxTokens, nil, caller, opts...)
	if err != nil {
		return nil, err
	}
	return &Embeddings{engine: e}, nil
}

// Process embeds every message strictly in input order. A nil message slice
// fails with ErrInvalidInput before any request is issued. A response
// without a vector degrades to an empty one for that item; the run
// continues. Any transport error aborts the whole run.
func (p *Embeddings) Process(ctx context.Context, messages []string) (*models.Outcome, error) {
	if messages == nil {
		return nil, ErrInvalidInput
	}

	results := make([]models.Result, 0, len(messages))
	for i, message := range messages {
		p.logger.Info().Msgf("Processing message %d/%d", i+1, len(messages))

		vector, err := p.caller.Embed(ctx, message)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i+1, err)
		}
		if vector == nil {
			vector = []float32{}
		}

		results = append(results, models.Result{
			Index:     i + 1,
			InputText: message,
			Embedding: vector,
		})
		p.notify(models.ChunkEvent{
			Index: i + 1,
			Total: len(messages),
		})
	}

	return &models.Outcome{Status: models.StatusSuccess, Results: results}, nil
}
