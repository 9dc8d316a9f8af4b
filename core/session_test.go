package core

import (
	"testing"
	"time"
)

func TestSession_Clone(t *testing.T) {
	s := NewSession("s1")
	s.Context["k"] = "v"
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: "hi", Timestamp: time.Now().UTC()})

	clone := s.Clone()
	if clone == s {
		t.Fatal("Clone should be a different pointer")
	}

	clone.Context["extra"] = 1
	if _, exists := s.Context["extra"]; exists {
		t.Error("original should not see the clone's new context key")
	}

	clone.Messages[0].Content = "changed"
	if s.Messages[0].Content != "hi" {
		t.Error("original should not see the clone's message mutation")
	}
}

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession("s2")
	if !s.Active {
		t.Error("new session should be active")
	}
	if s.Messages == nil || s.Context == nil {
		t.Error("new session should have non-nil history and context")
	}
}
