package core

import "time"

// Message roles. The set is closed; skills and the CLI only ever produce
// these three.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a session's conversation history. Messages
// are immutable once appended.
type Message struct {
	Role      string         `json:"role" yaml:"role"`
	Content   string         `json:"content" yaml:"content"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Session is a bounded, ordered conversation scope with its own message
// history and key/value context. Message order is insertion order; the
// history is trimmed oldest-first to the configured maximum at append and
// persist time, never retroactively reordered.
//
// Sessions carry no lock of their own: the context store owns all mutation
// and serializes access. Fields are exported for the persistence codecs.
type Session struct {
	ID        string         `json:"id" yaml:"id"`
	StartedAt time.Time      `json:"started_at" yaml:"started_at"`
	Messages  []Message      `json:"messages" yaml:"messages"`
	Context   map[string]any `json:"context" yaml:"context"`
	Active    bool           `json:"active" yaml:"active"`
}

// NewSession creates an active session with an empty history and context.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		StartedAt: time.Now().UTC(),
		Messages:  []Message{},
		Context:   map[string]any{},
		Active:    true,
	}
}

// Clone returns a deep copy of the session safe for independent use. The
// context store hands out clones so callers never observe live mutation.
func (s *Session) Clone() *Session {
	clone := &Session{
		ID:        s.ID,
		StartedAt: s.StartedAt,
		Messages:  make([]Message, len(s.Messages)),
		Context:   make(map[string]any, len(s.Context)),
		Active:    s.Active,
	}
	copy(clone.Messages, s.Messages)
	for k, v := range s.Context {
		clone.Context[k] = v
	}
	return clone
}
