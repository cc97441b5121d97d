package models

// Result is the outcome of one completed chunk or message. Indexes are
// 1-based. Chat runs fill ResponseText, embedding runs fill Embedding.
type Result struct {
	Index        int       `json:"index"`
	InputText    string    `json:"input_text"`
	ResponseText string    `json:"response_text,omitempty"`
	Embedding    []float32 `json:"embedding,omitempty"`
}

// Outcome is the top-level return value of one processing run. It is only
// produced for successful runs; fatal conditions surface as errors instead.
type Outcome struct {
	Status  string   `json:"status"`
	Results []Result `json:"results"`
}

// Prompts holds the chat-mode prompt pair. FollowUpTemplate must contain the
// LastChunkEndPlaceholder where the continuity tail should be substituted.
type Prompts struct {
	Initial          string `yaml:"initial" json:"initial"`
	FollowUpTemplate string `yaml:"follow_up_template" json:"follow_up_template"`
}

// ChatOptions controls cross-chunk continuity for a chat run.
type ChatOptions struct {
	// IncludeLastChunk carries the tail of each response into the next
	// chunk's prompt.
	IncludeLastChunk bool `yaml:"include_last_chunk" json:"include_last_chunk"`
	// LastChunkTokenCount bounds the carried tail; zero means
	// DefaultLastChunkTokens.
	LastChunkTokenCount int `yaml:"last_chunk_token_count" json:"last_chunk_token_count"`
}

// ChunkEvent describes one completed chunk for diagnostic observers.
type ChunkEvent struct {
	Index          int
	Total          int
	PromptTokens   int
	ChunkTokens    int
	CarriedTokens  int
	ReservedTokens int
}
