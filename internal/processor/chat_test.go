package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"ai-processor/internal/budget"
	"ai-processor/internal/models"
	"ai-processor/internal/splitter"
)

type chatCall struct {
	system    string
	user      string
	maxTokens int
}

// mockCaller records every request and replays canned responses.
type mockCaller struct {
	chatResponses []string
	chatErr       error
	chatCalls     []chatCall

	embedVector []float32
	embedErr    error
	embedCalls  []string
}

func (m *mockCaller) ChatComplete(_ context.Context, system, user string, maxTokens int) (string, error) {
	m.chatCalls = append(m.chatCalls, chatCall{system: system, user: user, maxTokens: maxTokens})
	if m.chatErr != nil {
		return "", m.chatErr
	}
	if len(m.chatResponses) == 0 {
		return "", nil
	}
	i := len(m.chatCalls) - 1
	if i >= len(m.chatResponses) {
		i = len(m.chatResponses) - 1
	}
	return m.chatResponses[i], nil
}

func (m *mockCaller) Embed(_ context.Context, input string) ([]float32, error) {
	m.embedCalls = append(m.embedCalls, input)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedVector, nil
}

func ratio(r float64) *float64 {
	return &r
}

func newTestChat(t *testing.T, maxTokens int, responseRatio *float64, caller ModelCaller, opts ...Option) *Chat {
	t.Helper()
	opts = append(opts, WithLogger(zerolog.Nop()))
	p, err := NewChat("test-model", maxTokens, responseRatio, caller, opts...)
	if err != nil {
		t.Fatalf("NewChat() unexpected error: %v", err)
	}
	return p
}

var testPrompts = models.Prompts{
	Initial:          "Summarize.",
	FollowUpTemplate: "Continue from: {last_chunk_end}",
}

func TestChatProcessSingleChunk(t *testing.T) {
	caller := &mockCaller{chatResponses: []string{"Mock response"}}
	p := newTestChat(t, 200, ratio(0.3), caller)

	outcome, err := p.Process(context.Background(), "Hi!", testPrompts, models.ChatOptions{})
	if err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}

	if outcome.Status != models.StatusSuccess {
		t.Errorf("Status = %q, want %q", outcome.Status, models.StatusSuccess)
	}
	if len(outcome.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(outcome.Results))
	}
	res := outcome.Results[0]
	if res.Index != 1 || res.InputText != "Hi!" || res.ResponseText != "Mock response" {
		t.Errorf("unexpected result: %+v", res)
	}

	if len(caller.chatCalls) != 1 {
		t.Fatalf("got %d calls, want 1", len(caller.chatCalls))
	}
	call := caller.chatCalls[0]
	if call.system != "Summarize." || call.user != "Hi!" {
		t.Errorf("unexpected request: %+v", call)
	}
	if call.maxTokens != 140 { // floor(200 * 0.7)
		t.Errorf("maxTokens = %d, want 140", call.maxTokens)
	}
}

func TestChatProcessContinuity(t *testing.T) {
	// chunk budget floor(20*0.5) = 10; each line is 6 tokens, so the
	// content splits into two chunks
	content := "one two three four five six\nsix five four three two one"
	caller := &mockCaller{chatResponses: []string{"alpha beta gamma delta", "done"}}
	p := newTestChat(t, 20, ratio(0.5), caller)

	opts := models.ChatOptions{IncludeLastChunk: true, LastChunkTokenCount: 3}
	outcome, err := p.Process(context.Background(), content, testPrompts, opts)
	if err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}
	if len(outcome.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(outcome.Results))
	}

	if len(caller.chatCalls) != 2 {
		t.Fatalf("got %d calls, want 2", len(caller.chatCalls))
	}
	if got := caller.chatCalls[0].system; got != "Summarize." {
		t.Errorf("first prompt = %q, want the initial prompt", got)
	}
	// tail of "alpha beta gamma delta" bounded to 3 tokens
	want := "Continue from: beta gamma delta"
	if got := caller.chatCalls[1].system; got != want {
		t.Errorf("second prompt = %q, want %q", got, want)
	}

	if outcome.Results[0].Index != 1 || outcome.Results[1].Index != 2 {
		t.Errorf("result indexes = %d, %d; want 1, 2", outcome.Results[0].Index, outcome.Results[1].Index)
	}
	if outcome.Results[1].ResponseText != "done" {
		t.Errorf("second response = %q, want %q", outcome.Results[1].ResponseText, "done")
	}
}

func TestChatProcessWithoutContinuity(t *testing.T) {
	content := "one two three four five six\nsix five four three two one"
	caller := &mockCaller{chatResponses: []string{"alpha beta gamma delta", "done"}}
	p := newTestChat(t, 20, ratio(0.5), caller)

	_, err := p.Process(context.Background(), content, testPrompts, models.ChatOptions{})
	if err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}

	// the placeholder is still substituted, with an empty tail
	want := "Continue from: "
	if got := caller.chatCalls[1].system; got != want {
		t.Errorf("second prompt = %q, want %q", got, want)
	}
}

func TestChatProcessInsufficientBudget(t *testing.T) {
	caller := &mockCaller{}
	p := newTestChat(t, 10, ratio(0.2), caller)

	prompts := models.Prompts{
		Initial:          "one two three four five six seven",
		FollowUpTemplate: "Continue from: {last_chunk_end}",
	}
	_, err := p.Process(context.Background(), "aa bb cc dd ee ff gg", prompts, models.ChatOptions{})
	if !errors.Is(err, budget.ErrInsufficientBudget) {
		t.Fatalf("Process() error = %v, want ErrInsufficientBudget", err)
	}
	if len(caller.chatCalls) != 0 {
		t.Errorf("no request should be issued, got %d", len(caller.chatCalls))
	}
}

func TestChatProcessChunkTooSmall(t *testing.T) {
	p := newTestChat(t, 1, ratio(0.9), &mockCaller{})

	_, err := p.Process(context.Background(), "hello", testPrompts, models.ChatOptions{})
	if !errors.Is(err, splitter.ErrChunkTooSmall) {
		t.Fatalf("Process() error = %v, want ErrChunkTooSmall", err)
	}
}

func TestChatProcessCallerError(t *testing.T) {
	callErr := errors.New("upstream timeout")
	caller := &mockCaller{chatErr: callErr}
	p := newTestChat(t, 200, ratio(0.3), caller)

	outcome, err := p.Process(context.Background(), "Hi!", testPrompts, models.ChatOptions{})
	if !errors.Is(err, callErr) {
		t.Fatalf("Process() error = %v, want the caller's error", err)
	}
	if outcome != nil {
		t.Errorf("no partial outcome expected, got %+v", outcome)
	}
}

func TestChatProcessEmptyResponseTolerated(t *testing.T) {
	caller := &mockCaller{} // responds with ""
	p := newTestChat(t, 200, ratio(0.3), caller)

	outcome, err := p.Process(context.Background(), "Hi!", testPrompts, models.ChatOptions{IncludeLastChunk: true})
	if err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}
	if len(outcome.Results) != 1 || outcome.Results[0].ResponseText != "" {
		t.Errorf("unexpected results: %+v", outcome.Results)
	}
}

func TestNewChatInvalidRatio(t *testing.T) {
	_, err := NewChat("test-model", 200, ratio(1.5), &mockCaller{}, WithLogger(zerolog.Nop()))
	if !errors.Is(err, budget.ErrInvalidResponseRatio) {
		t.Fatalf("NewChat() error = %v, want ErrInvalidResponseRatio", err)
	}
}

func TestChatProcessObserver(t *testing.T) {
	var events []models.ChunkEvent
	caller := &mockCaller{chatResponses: []string{"Mock response"}}
	p := newTestChat(t, 200, ratio(0.3), caller, WithObserver(func(ev models.ChunkEvent) {
		events = append(events, ev)
	}))

	_, err := p.Process(context.Background(), "Hi!", testPrompts, models.ChatOptions{})
	if err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Index != 1 || ev.Total != 1 {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.ReservedTokens <= 0 {
		t.Errorf("ReservedTokens = %d, want > 0", ev.ReservedTokens)
	}
}
