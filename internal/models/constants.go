package models

const (
	// StatusSuccess is the Outcome status for a completed run.
	StatusSuccess = "success"

	// LastChunkEndPlaceholder is substituted with the continuity tail in
	// follow-up prompt templates.
	LastChunkEndPlaceholder = "{last_chunk_end}"

	// DefaultLastChunkTokens bounds the continuity tail carried between
	// chat chunks when no explicit bound is configured.
	DefaultLastChunkTokens = 50
)

var (
	DefaultInitialPrompt = `You are given the first part of a long document. Summarize it faithfully, preserving names, figures and the order of events. Answer with the summary and nothing else.`

	DefaultFollowUpTemplate = `You are given the next part of the same document. The previous part of your answer ended with:
"{last_chunk_end}"
Continue the summary seamlessly from that point. Answer with the continuation and nothing else.`
)
