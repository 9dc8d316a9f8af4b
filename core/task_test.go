package core

import "testing"

func TestNewTask_Defaults(t *testing.T) {
	task := NewTask("demo", "local_shell", map[string]any{"action": "run"})

	if task.ID == "" {
		t.Fatal("expected a generated task id")
	}
	if task.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", task.Status)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected creation timestamp to be set")
	}
	if task.StartedAt != nil || task.CompletedAt != nil {
		t.Error("unstarted task should carry no start or completion time")
	}

	other := NewTask("demo", "local_shell", nil)
	if other.ID == task.ID {
		t.Error("task ids should be unique")
	}
}

func TestStatus_Terminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusPending:   false,
		StatusRunning:   false,
		StatusCompleted: true,
		StatusFailed:    true,
		StatusCancelled: true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}
