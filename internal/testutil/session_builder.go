package testutil

import (
	"time"

	"github.com/hupe1980/skillmesh/core"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("sess-1").Context("k", "v").Message("user", "hi").Build()
type SessionBuilder struct {
	id       string
	context  map[string]any
	messages []core.Message
}

// NewSessionBuilder creates a new builder for a session with the given id.
// Use chainable methods (Context, Message) then call Build.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, context: map[string]any{}}
}

// Context sets or overwrites a context key/value pair on the resulting
// session (chainable).
func (b *SessionBuilder) Context(key string, val any) *SessionBuilder {
	b.context[key] = val
	return b
}

// Message appends a message to the session history (chainable).
func (b *SessionBuilder) Message(role, content string) *SessionBuilder {
	b.messages = append(b.messages, core.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  map[string]any{},
	})
	return b
}

// Build returns a *core.Session with pre-populated context and messages.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)
	for k, v := range b.context {
		s.Context[k] = v
	}
	s.Messages = append(s.Messages, b.messages...)
	return s
}
