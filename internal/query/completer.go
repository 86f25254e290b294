package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// Completer produces an answer text for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// StreamingCompleter additionally delivers the answer incrementally.
// onDelta is called for each text fragment; the full text is returned at
// the end.
type StreamingCompleter interface {
	Completer
	StreamComplete(ctx context.Context, prompt string, onDelta func(string)) (string, error)
}

// LLMCompleter adapts a langchaingo model to the Completer interfaces.
type LLMCompleter struct {
	model llms.Model
}

// NewLLMCompleter wraps a langchaingo model.
func NewLLMCompleter(model llms.Model) *LLMCompleter {
	return &LLMCompleter{model: model}
}

// Complete generates the full answer in one call.
func (c *LLMCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
}

// StreamComplete generates the answer with incremental delivery.
func (c *LLMCompleter) StreamComplete(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	var full strings.Builder
	_, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			full.Write(chunk)
			onDelta(string(chunk))
			return ctx.Err()
		}))
	if err != nil {
		return "", err
	}
	return full.String(), nil
}

// MockCompleter is a test double returning a fixed answer, optionally
// after a delay, streaming it word by word.
type MockCompleter struct {
	mu      sync.Mutex
	Answer  string
	Err     error
	Delay   time.Duration
	prompts []string
}

func (m *MockCompleter) record(prompt string) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
}

// Prompts returns the prompts seen so far.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Complete returns the configured answer after the configured delay.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.record(prompt)
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Answer, nil
}

// StreamComplete streams the configured answer word by word.
func (m *MockCompleter) StreamComplete(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	answer, err := m.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	words := strings.Fields(answer)
	for i, word := range words {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if i > 0 {
			word = " " + word
		}
		onDelta(word)
	}
	return answer, nil
}
