package skill

import (
	"context"
	"fmt"

	"github.com/hupe1980/skillmesh/core"
)

// FuncOptions configure a Func skill's static metadata.
type FuncOptions struct {
	Version string
	Author  string
}

// Func is a generic adapter that exposes a plain Go function as a skill.
//
// Responsibilities:
//   - Holds the declared parameter specs and validates supplied arguments
//     (required flags, type labels, defaults) before execution
//   - Invokes the wrapped function with the bound core.SkillContext
//   - Normalizes error handling so callers receive *SkillError with
//     consistent codes: CodeValidation for argument mismatches,
//     CodeExecution for wrapped function failures (custom codes are
//     preserved when the function returns *SkillError directly)
//
// A Func has no internal mutable state after construction and is safe for
// concurrent use by multiple goroutines.
type Func struct {
	name        string
	description string
	version     string
	author      string
	params      map[string]core.ParameterSpec
	fn          func(ctx context.Context, sc core.SkillContext, params map[string]any) (any, error)
}

// NewFunc constructs a Func skill from explicit metadata and function.
//
// Example:
//
//	echo := skill.NewFunc("echo", "Return the input parameters unchanged",
//	  map[string]core.ParameterSpec{},
//	  func(_ context.Context, _ core.SkillContext, params map[string]any) (any, error) {
//	    return params, nil
//	  },
//	)
func NewFunc(
	name, description string,
	params map[string]core.ParameterSpec,
	fn func(ctx context.Context, sc core.SkillContext, params map[string]any) (any, error),
	optFns ...func(o *FuncOptions),
) *Func {
	opts := FuncOptions{Version: "0.1.0", Author: "skillmesh"}
	for _, optFn := range optFns {
		optFn(&opts)
	}
	return &Func{
		name:        name,
		description: description,
		version:     opts.Version,
		author:      opts.Author,
		params:      params,
		fn:          fn,
	}
}

// Name implements core.Skill.
func (f *Func) Name() string { return f.name }

// Description implements core.Skill.
func (f *Func) Description() string { return f.description }

// Version implements core.Skill.
func (f *Func) Version() string { return f.version }

// Author implements core.Skill.
func (f *Func) Author() string { return f.author }

// Parameters implements core.Skill.
func (f *Func) Parameters() map[string]core.ParameterSpec { return f.params }

// Bind implements core.Skill.
func (f *Func) Bind(sc core.SkillContext) core.Executor {
	return &funcExecutor{skill: f, sc: sc}
}

type funcExecutor struct {
	skill *Func
	sc    core.SkillContext
}

// Execute validates the provided params against the declared specs then
// invokes the underlying function.
//
// Error semantics:
//
//	*SkillError (returned directly) -> forwarded unchanged
//	validation failure              -> *SkillError{Code: CodeValidation}
//	other error                     -> *SkillError{Code: CodeExecution}
func (e *funcExecutor) Execute(ctx context.Context, params map[string]any) (any, error) {
	effective, err := ApplyParams(e.skill.name, e.skill.params, params)
	if err != nil {
		return nil, err
	}
	result, err := e.skill.fn(ctx, e.sc, effective)
	if err != nil {
		if skillErr, ok := err.(*SkillError); ok {
			return nil, skillErr
		}
		return nil, &SkillError{Skill: e.skill.name, Message: err.Error(), Code: CodeExecution}
	}
	return result, nil
}

// ApplyParams validates params against the declared specs and returns the
// effective parameter map: required entries must be present with a matching
// type, and absent optional entries receive their declared default.
func ApplyParams(skillName string, specs map[string]core.ParameterSpec, params map[string]any) (map[string]any, error) {
	effective := make(map[string]any, len(params))
	for k, v := range params {
		effective[k] = v
	}
	for name, spec := range specs {
		v, present := effective[name]
		if !present {
			if spec.Required {
				return nil, &SkillError{
					Skill:   skillName,
					Message: fmt.Sprintf("missing required parameter %q", name),
					Code:    CodeValidation,
				}
			}
			if spec.Default != nil {
				effective[name] = spec.Default
			}
			continue
		}
		if !typeMatches(spec.Type, v) {
			return nil, &SkillError{
				Skill:   skillName,
				Message: fmt.Sprintf("parameter %q: expected type %s, got %T", name, spec.Type, v),
				Code:    CodeValidation,
			}
		}
	}
	return effective, nil
}

// typeMatches checks a value against a declared type label. Numbers accept
// every numeric kind that JSON or YAML decoding can produce.
func typeMatches(label string, v any) bool {
	if label == "" || label == "any" || v == nil {
		return true
	}
	switch label {
	case "string":
		_, ok := v.(string)
		return ok
	case "number", "integer":
		switch v.(type) {
		case float64, float32, int, int64, int32:
			return true
		}
		return false
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	default:
		return true
	}
}
