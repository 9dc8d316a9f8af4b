package core

import "errors"

var (
	// ErrNoActiveSession is returned by context operations that require a
	// current session when none has been created or selected.
	ErrNoActiveSession = errors.New("no active session")

	// ErrInvalidScope is returned when a context operation names a scope
	// outside {global, session}.
	ErrInvalidScope = errors.New("invalid context scope")

	// ErrSkillNotFound is the cause recorded on a task whose skill name
	// resolves to nothing. Wrapped errors carry the skill name.
	ErrSkillNotFound = errors.New("skill not found")

	// ErrTimeout marks a bounded external operation that exceeded its
	// deadline. Distinct from generic execution failure so callers can
	// branch on errors.Is.
	ErrTimeout = errors.New("operation timed out")
)
