// Package skill implements the capability registry that discovers skill
// implementations, exposes their metadata and hands factories to the task
// engine. It also provides the Func adapter for exposing plain Go functions
// as skills with schema-validated arguments and consistent error handling.
//
// Skill implementations should:
//   - Provide clear, descriptive names and descriptions (snake_case names)
//   - Declare their parameter schema via core.ParameterSpec
//   - Honor context cancellation inside Execute
//   - Be safe for concurrent use once bound
package skill

import "fmt"

// Error codes used across skill implementations.
const (
	// CodeValidation categorizes schema / argument mismatches.
	CodeValidation = "VALIDATION_ERROR"
	// CodeExecution categorizes failures of the underlying operation.
	CodeExecution = "EXECUTION_ERROR"
	// CodeTimeout categorizes bounded operations that exceeded their deadline.
	CodeTimeout = "TIMEOUT"
)

// SkillError represents errors that occur during skill execution.
type SkillError struct {
	Skill   string `json:"skill"`             // Name of the skill that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
	Cause   error  `json:"-"`                 // Wrapped sentinel, e.g. core.ErrTimeout
}

func (e *SkillError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("skill error [%s] in %s: %s", e.Code, e.Skill, e.Message)
	}
	return fmt.Sprintf("skill error in %s: %s", e.Skill, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *SkillError) Unwrap() error { return e.Cause }

// NewSkillError creates a new SkillError with the specified details.
func NewSkillError(skill, message, code string) *SkillError {
	return &SkillError{
		Skill:   skill,
		Message: message,
		Code:    code,
	}
}
