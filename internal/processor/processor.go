// Package processor implements the chunk-processing engines: a sequential
// chat engine that carries a continuity tail across chunk boundaries, and a
// batch embedding engine that treats each message independently.
package processor

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ai-processor/internal/budget"
	"ai-processor/internal/models"
	"ai-processor/internal/tokens"
)

// ErrInvalidInput means the embedding engine was handed no message sequence.
var ErrInvalidInput = errors.New("context must be a list of messages for embeddings mode")

// ModelCaller is the narrow contract to the remote model endpoint. Transport
// concerns (endpoint URL, credentials, retries, timeouts) live behind it;
// the engines only supply payload fields and consume the response text or
// vector.
type ModelCaller interface {
	// ChatComplete issues one chat-completion request with a system and a
	// user message and returns the text of the first choice, or "" when the
	// response carries none.
	ChatComplete(ctx context.Context, system, user string, maxTokens int) (string, error)
	// Embed issues one embedding request and returns the vector verbatim.
	Embed(ctx context.Context, input string) ([]float32, error)
}

// engine holds the construction-time state shared by both modes. All fields
// are immutable after construction, so a single engine instance may serve
// concurrent runs; per-run state lives in the Process loops.
type engine struct {
	modelName string
	maxTokens int
	chunkSize int
	caller    ModelCaller
	logger    zerolog.Logger
	observer  func(models.ChunkEvent)
}

// Option configures an engine at construction time.
type Option func(*engine)

// WithLogger routes engine diagnostics to the given logger instead of the
// global one.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *engine) {
		e.logger = logger
	}
}

// WithObserver registers a callback invoked once per completed chunk or
// message with its token accounting. Intended for diagnostics; the engines
// never depend on it.
func WithObserver(fn func(models.ChunkEvent)) Option {
	return func(e *engine) {
		e.observer = fn
	}
}

func newEngine(modelName string, maxTokens int, responseRatio *float64, caller ModelCaller, opts ...Option) (engine, error) {
	chunkSize, err := budget.ChunkSize(maxTokens, responseRatio)
	if err != nil {
		return engine{}, err
	}
	e := engine{
		modelName: modelName,
		maxTokens: maxTokens,
		chunkSize: chunkSize,
		caller:    caller,
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(&e)
	}
	e.logger.Info().
		Str("model", modelName).
		Int("max_tokens", maxTokens).
		Int("chunk_size", chunkSize).
		Msg("Processor initialized")
	return e, nil
}

// logChunkDetails reports the split result: chunk count, total tokens and
// per-chunk counts for the first few chunks.
func (e *engine) logChunkDetails(chunks []string) {
	total := 0
	for _, chunk := range chunks {
		total += tokens.Count(chunk)
	}
	e.logger.Info().
		Int("chunks", len(chunks)).
		Int("total_tokens", total).
		Msg("Context split into chunks")
	for i, chunk := range chunks {
		if i >= 5 {
			e.logger.Debug().Msgf("... %d more chunks omitted", len(chunks)-5)
			break
		}
		e.logger.Debug().
			Int("chunk_index", i+1).
			Int("token_count", tokens.Count(chunk)).
			Msg("Chunk details")
	}
}

func (e *engine) notify(ev models.ChunkEvent) {
	if e.observer != nil {
		e.observer(ev)
	}
}
