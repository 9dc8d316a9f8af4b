// Package chat provides the conversational skill. It records the user
// message in the current session, feeds the recent window of conversation to
// a model and records the assistant reply, so consecutive chat tasks carry
// context across turns.
package chat

import (
	"context"
	"fmt"

	"github.com/hupe1980/skillmesh/core"
	"github.com/hupe1980/skillmesh/model"
	"github.com/hupe1980/skillmesh/skill"
)

// Name under which the skill registers.
const Name = "chat"

const defaultSystemPrompt = "You are a helpful assistant. Keep answers concise."

// Skill implements core.Skill for conversation.
type Skill struct {
	model  model.Model
	system string
}

// Options configures the chat skill.
type Options struct {
	// SystemPrompt overrides the default system prompt.
	SystemPrompt string
}

// New constructs the chat skill around the given model.
func New(m model.Model, optFns ...func(o *Options)) *Skill {
	opts := Options{SystemPrompt: defaultSystemPrompt}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Skill{model: m, system: opts.SystemPrompt}
}

// Name implements core.Skill.
func (s *Skill) Name() string { return Name }

// Description implements core.Skill.
func (s *Skill) Description() string {
	return "Conversational skill backed by a chat-completion model"
}

// Version implements core.Skill.
func (s *Skill) Version() string { return "0.1.0" }

// Author implements core.Skill.
func (s *Skill) Author() string { return "skillmesh" }

// Parameters implements core.Skill.
func (s *Skill) Parameters() map[string]core.ParameterSpec {
	return map[string]core.ParameterSpec{
		"message": {Type: "string", Required: true},
	}
}

// Bind implements core.Skill.
func (s *Skill) Bind(sc core.SkillContext) core.Executor {
	return &executor{skill: s, sc: sc}
}

type executor struct {
	skill *Skill
	sc    core.SkillContext
}

// Execute records the user turn, generates a completion over the recent
// conversation window and records the assistant turn. Recording failures do
// not abort the exchange; the reply is still produced and returned.
func (e *executor) Execute(ctx context.Context, params map[string]any) (any, error) {
	params, err := skill.ApplyParams(Name, e.skill.Parameters(), params)
	if err != nil {
		return nil, err
	}
	message, _ := params["message"].(string)
	if message == "" {
		return nil, skill.NewSkillError(Name, "message must not be empty", skill.CodeValidation)
	}

	if e.sc != nil {
		if _, err := e.sc.AddMessage(core.RoleUser, message, nil); err != nil {
			return nil, fmt.Errorf("record user message: %w", err)
		}
	}

	history := e.history(message)
	reply, err := e.skill.model.Generate(ctx, model.Request{
		System:   e.skill.system,
		Messages: history,
	})
	if err != nil {
		return nil, &skill.SkillError{
			Skill:   Name,
			Message: fmt.Sprintf("model generation failed: %v", err),
			Code:    skill.CodeExecution,
			Cause:   err,
		}
	}

	if e.sc != nil {
		if _, err := e.sc.AddMessage(core.RoleAssistant, reply, nil); err != nil {
			return nil, fmt.Errorf("record assistant message: %w", err)
		}
	}

	info := e.skill.model.Info()
	return map[string]any{
		"reply":    reply,
		"model":    info.Name,
		"provider": info.Provider,
	}, nil
}

// history returns the recent window, falling back to just the current
// message when no session is active.
func (e *executor) history(message string) []core.Message {
	if e.sc != nil {
		if recent := e.sc.RecentMessages(0); len(recent) > 0 {
			return recent
		}
	}
	return []core.Message{{Role: core.RoleUser, Content: message}}
}
