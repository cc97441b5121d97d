// Package rag answers a query from previously stored embeddings: embed the
// query, fetch the nearest chunks, then ground a single chat call on them.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"ai-processor/internal/budget"
	"ai-processor/internal/processor"
	"ai-processor/internal/store"
)

const systemPrompt = "You are a helpful assistant. Use the provided context to answer the query."

const defaultTopK = 5

type RAG struct {
	store     *store.VectorStore
	embedder  processor.ModelCaller
	chat      processor.ModelCaller
	maxTokens int
}

type Response struct {
	Query   string
	Source  string
	Content string
}

// NewRAG wires the store to the two collaborators: embedder for the query
// vector, chat for the grounded answer. They may be the same client when one
// endpoint serves both models.
func NewRAG(vectorStore *store.VectorStore, embedder, chat processor.ModelCaller, maxTokens int) *RAG {
	return &RAG{store: vectorStore, embedder: embedder, chat: chat, maxTokens: maxTokens}
}

// Query embeds the query, collects the nearest stored chunks as grounding
// context and asks the chat model once. The reservation check keeps the
// grounded request inside the model's context window.
func (r *RAG) Query(ctx context.Context, query string, topK int) (*Response, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := r.store.Search(ctx, queryEmbedding, topK)
	if err != nil {
		return nil, err
	}
	log.Debug().Msgf("Found %d matching chunks", len(matches))

	var source strings.Builder
	for _, match := range matches {
		source.WriteString(match.Content + "\n\n")
	}

	user := fmt.Sprintf("Context:\n%s\nQuery: %s", source.String(), query)
	reserved, err := budget.Reserved(r.maxTokens, systemPrompt, user, 0)
	if err != nil {
		return nil, err
	}

	answer, err := r.chat.ChatComplete(ctx, systemPrompt, user, reserved)
	if err != nil {
		return nil, err
	}

	return &Response{
		Query:   query,
		Source:  source.String(),
		Content: answer,
	}, nil
}
