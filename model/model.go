// Package model defines the minimal chat-completion contract used by the
// chat skill, decoupling it from concrete providers. Implementations live in
// the anthropic and openai sub-packages; the Mock keeps tests offline.
package model

import (
	"context"
	"fmt"

	"github.com/hupe1980/skillmesh/core"
)

// Request captures the normalized model input: an optional system prompt
// plus the conversational history, oldest first.
type Request struct {
	System   string         `json:"system,omitempty"`
	Messages []core.Message `json:"messages"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", ...
}

// Model is the interface the chat skill drives generation through.
type Model interface {
	// Generate produces a single assistant completion for the request.
	Generate(ctx context.Context, req Request) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Mock is a lightweight in-memory Model useful for tests and examples. It
// keys canned completions on the content of the last message.
type Mock struct {
	info      Info
	responses map[string]string
}

// NewMock constructs a Mock model.
func NewMock(name string) *Mock {
	return &Mock{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *Mock) AddResponse(prompt, response string) { m.responses[prompt] = response }

// Generate implements Model.
func (m *Mock) Generate(_ context.Context, req Request) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	last := req.Messages[len(req.Messages)-1]
	if resp, ok := m.responses[last.Content]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", last.Content), nil
}

// Info implements Model.
func (m *Mock) Info() Info { return m.info }
