package core

import "context"

// Scope names a context namespace. Global and session context are
// independent; every lookup and update must say which one it targets.
type Scope string

const (
	// ScopeGlobal addresses the process-wide context namespace.
	ScopeGlobal Scope = "global"
	// ScopeSession addresses the current session's context namespace.
	ScopeSession Scope = "session"
)

// ParameterSpec describes a single named execution parameter of a skill:
// its type label, whether it must be supplied, and the default applied when
// it is optional and absent.
type ParameterSpec struct {
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
}

// SkillInfo is a metadata snapshot for a registered skill, derived entirely
// from the Skill contract rather than authored separately.
type SkillInfo struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Version     string                   `json:"version"`
	Author      string                   `json:"author"`
	Parameters  map[string]ParameterSpec `json:"parameters"`
}

// Skill is the pure metadata half of the capability contract. It requires no
// execution context, so registries can read metadata without ever handing a
// skill a placeholder context. Bind produces the execution half.
type Skill interface {
	// Name returns the unique skill identifier. Registering two skills with
	// the same name is not an error: the last registration wins.
	Name() string

	// Description returns a human-readable summary of the capability.
	Description() string

	// Version returns the skill's version string.
	Version() string

	// Author returns the skill's author string.
	Author() string

	// Parameters returns the declared execution parameter schema.
	Parameters() map[string]ParameterSpec

	// Bind returns an Executor bound to the given context handle. The
	// executor may consult and mutate session/global context and message
	// history through it during execution.
	Bind(sc SkillContext) Executor
}

// Executor is the execution half of the capability contract: a skill
// instance bound to a live context. Execute must honor ctx cancellation at
// its blocking points (subprocess waits, network calls, file reads).
//
// A returned error marks the owning task failed. A result that merely
// contains an error-shaped payload (for example {"error": ...}) without a Go
// error is still a successful execution from the engine's point of view; the
// skill chose to report failure in-band.
type Executor interface {
	Execute(ctx context.Context, params map[string]any) (any, error)
}

// SkillContext is the handle skills receive at bind time. It exposes the
// context store operations a skill may need during execution.
type SkillContext interface {
	// AddMessage appends a message to the current session. The bool reports
	// whether the mutation was flushed to the backing store.
	AddMessage(role, content string, metadata map[string]any) (bool, error)

	// RecentMessages returns a snapshot of the last count messages of the
	// current session (count <= 0 selects the configured context window).
	RecentMessages(count int) []Message

	// UpdateContext writes a key into the named scope. The bool reports
	// whether the mutation was flushed to the backing store.
	UpdateContext(key string, value any, scope Scope) (bool, error)

	// GetContext reads a key from the named scope.
	GetContext(key string, scope Scope) (any, bool)

	// FullContext returns the merged view: global entries overlaid by
	// current-session entries where keys collide.
	FullContext() map[string]any

	// Credential resolves a secret by looking in session context, then
	// global context, then the named process environment variable.
	Credential(key, envVar string) (string, bool)
}

// InfoOf builds the metadata snapshot for a skill. The parameter map is
// copied so callers cannot mutate the skill's schema.
func InfoOf(s Skill) SkillInfo {
	params := make(map[string]ParameterSpec, len(s.Parameters()))
	for name, spec := range s.Parameters() {
		params[name] = spec
	}
	return SkillInfo{
		Name:        s.Name(),
		Description: s.Description(),
		Version:     s.Version(),
		Author:      s.Author(),
		Parameters:  params,
	}
}
