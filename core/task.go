package core

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates the task lifecycle states. The state machine is
// Pending -> Running -> {Completed | Failed | Cancelled}; terminal states
// are final and no transition ever leaves them.
type Status string

const (
	// StatusPending marks a task that has been created but not yet dispatched.
	StatusPending Status = "pending"
	// StatusRunning marks a task currently executing a skill.
	StatusRunning Status = "running"
	// StatusCompleted marks a task whose skill execution returned successfully.
	StatusCompleted Status = "completed"
	// StatusFailed marks a task whose skill could not be resolved or whose
	// execution returned an error.
	StatusFailed Status = "failed"
	// StatusCancelled marks a task cancelled while it was active. Cancellation
	// is bookkeeping only; see engine.Engine.CancelTask.
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is one of the final states.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Task is one request to execute a named skill with given parameters.
//
// Parameters, and Result on success, hold JSON-shaped values (string,
// float64, bool, map[string]any, []any, nil) so they survive any of the
// persistence codecs unchanged.
//
// Ownership: the engine exclusively owns Status, StartedAt, CompletedAt,
// Result and Error while the task is live. Once the status is terminal the
// task is appended to the engine history and no further mutation occurs.
type Task struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Skill       string         `json:"skill"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Status      Status         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Result      any            `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Clone returns a shallow copy of the task safe for reading outside the
// engine lock. The engine replaces StartedAt and CompletedAt wholesale rather
// than mutating the pointees, so copying the struct is enough.
func (t *Task) Clone() *Task {
	clone := *t
	return &clone
}

// NewTask creates a pending task with a generated unique id and the creation
// timestamp set.
func NewTask(name, skill string, parameters map[string]any) *Task {
	return &Task{
		ID:         uuid.NewString(),
		Name:       name,
		Skill:      skill,
		Parameters: parameters,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}
