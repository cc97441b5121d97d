// Package llmservice implements the model-call collaborator over
// langchaingo. Transport details (endpoint, bearer credential, retries,
// timeouts) end here; the processing engines only see the ModelCaller
// contract.
package llmservice

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"ai-processor/internal/config"
	"ai-processor/internal/helper"
)

// Client talks to one OpenAI-compatible or Ollama endpoint and satisfies
// processor.ModelCaller for both chat and embedding requests.
type Client struct {
	llm      llms.Model
	embedder *embeddings.EmbedderImpl
	logger   zerolog.Logger
}

// NewOpenAI builds a client for an OpenAI-compatible endpoint (OpenAI,
// OpenRouter, vLLM, ...).
func NewOpenAI(conn *config.Connection, model string) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(conn.Endpoint),
		openai.WithToken(strings.TrimPrefix(conn.APIKey, "Bearer ")),
		openai.WithModel(model),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm, embedder: embedder, logger: log.Logger}, nil
}

// NewOllama builds a client for a local Ollama server.
func NewOllama(cfg *config.LLMConfig) (*Client, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm, embedder: embedder, logger: log.Logger}, nil
}

// ChatComplete sends one system+user chat request and returns the first
// choice's text. A response without choices degrades to "" rather than an
// error; a single malformed upstream payload should not kill a long run.
func (c *Client) ChatComplete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	c.logger.Debug().Msgf("Calling chat model with: prompt=%s, chunk=%s",
		helper.Truncate(system, 50), helper.Truncate(user, 50))

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: system}}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextContent{Text: user}}},
	}
	res, err := c.llm.GenerateContent(ctx, messages, llms.WithMaxTokens(maxTokens))
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 || res.Choices[0] == nil {
		return "", nil
	}
	c.logger.Debug().Msgf("Received response: %s", helper.Truncate(res.Choices[0].Content, 50))
	return res.Choices[0].Content, nil
}

// Embed sends one embedding request and returns the vector verbatim.
func (c *Client) Embed(ctx context.Context, input string) ([]float32, error) {
	c.logger.Debug().Msgf("Calling embeddings model with input: %s", helper.Truncate(input, 50))
	embedding, err := c.embedder.EmbedQuery(ctx, input)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Msgf("Received embedding of length %d", len(embedding))
	return embedding, nil
}
