package dialogue

import (
	"context"
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name     string
		message  string
		expected Intent
	}{
		// Task creation
		{"add a task", "Add a task to review documents", IntentCreateTask},
		{"add another task", "Add another task like the previous one", IntentCreateTask},
		{"add urgent work task", "Add an urgent work task to fix the critical bug by tomorrow", IntentCreateTask},
		{"create task", "create a new task buy milk", IntentCreateTask},
		{"i need to", "I need to call the dentist", IntentCreateTask},
		{"remember to", "remember to water the plants", IntentCreateTask},
		{"catch-all is a task", "painting the fence is a task", IntentCreateTask},

		// Completion
		{"finished", "I finished the quarterly report", IntentCompleteTask},
		{"done with", "done with the shopping list", IntentCompleteTask},
		{"mark as done", "mark the report as done", IntentCompleteTask},

		// Deletion
		{"delete task", "delete the task about invoices", IntentDeleteTask},
		{"remove", "remove old meeting notes", IntentDeleteTask},

		// Editing
		{"edit task", "edit the task about invoices", IntentEditTask},
		{"update", "update the readme task", IntentEditTask},

		// Habits
		{"add habit", "add a habit of meditation", IntentAddHabit},
		{"start habit", "start a new habit: journaling", IntentAddHabit},
		{"complete habit", "completed my habit of meditation", IntentCompleteHabit},

		// Clients
		{"add client", "add a client called Acme Corp", IntentAddClient},

		// Reminders
		{"remind me", "remind me to call Sarah", IntentSetReminder},
		{"set reminder", "set a reminder for the standup", IntentSetReminder},

		// Browsing
		{"show tasks", "Show me my tasks", IntentListTasks},
		{"list tasks", "list all my tasks", IntentListTasks},
		{"whats on my plate", "what's on my plate", IntentListTasks},
		{"search", "search for invoice", IntentSearchTasks},
		{"find", "find tasks about the budget", IntentSearchTasks},
		{"stats", "show my stats", IntentGetAnalytics},
		{"productivity report", "give me a productivity report", IntentGetAnalytics},

		// No match, no fallback -> unknown
		{"small talk", "the weather is nice", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(context.Background(), tt.message)
			if got.Intent != tt.expected {
				t.Errorf("Classify(%q).Intent = %v, want %v", tt.message, got.Intent, tt.expected)
			}
		})
	}
}

func TestClassifyConfidence(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name     string
		message  string
		expected float64
	}{
		{"list is fixed", "Show me my tasks", 0.71},
		{"search is fixed", "search for invoice", 0.71},
		{"analytics is fixed", "show my stats", 0.71},
		{"long match is strong", "Add an urgent work task to fix the critical bug by tomorrow", 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(context.Background(), tt.message)
			if got.Confidence != tt.expected {
				t.Errorf("Classify(%q).Confidence = %v, want %v", tt.message, got.Confidence, tt.expected)
			}
		})
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	c := NewClassifier(stubFallback{label: "create_task"})

	for _, input := range []string{"", "   ", "\n\t "} {
		got := c.Classify(context.Background(), input)
		if got.Intent != IntentUnknown {
			t.Errorf("Classify(%q).Intent = %v, want unknown", input, got.Intent)
		}
		if got.Confidence != 0.0 {
			t.Errorf("Classify(%q).Confidence = %v, want 0.0", input, got.Confidence)
		}
	}
}

func TestClassifyFragment(t *testing.T) {
	c := NewClassifier(nil)

	got := c.Classify(context.Background(), "Add a task to review documents")
	if got.Fragment != "review documents" {
		t.Errorf("Fragment = %q, want %q", got.Fragment, "review documents")
	}
}

// stubFallback is a canned single-label classifier.
type stubFallback struct {
	label string
	err   error
}

func (s stubFallback) Label(ctx context.Context, text string) (string, error) {
	return s.label, s.err
}

func TestClassifyFallback(t *testing.T) {
	tests := []struct {
		name           string
		fallback       FallbackClassifier
		wantIntent     Intent
		wantConfidence float64
	}{
		{"maps create_task", stubFallback{label: "create_task"}, IntentCreateTask, 0.51},
		{"maps set_reminder", stubFallback{label: "set_reminder"}, IntentSetReminder, 0.51},
		{"maps get_analytics", stubFallback{label: "get_analytics"}, IntentGetAnalytics, 0.51},
		{"maps edit_task", stubFallback{label: "edit_task"}, IntentEditTask, 0.51},
		{"unmapped label", stubFallback{label: "greeting"}, IntentUnknown, 0.1},
		{"fallback error", stubFallback{err: errors.New("boom")}, IntentUnknown, 0.1},
		{"no fallback", nil, IntentUnknown, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.fallback)
			got := c.Classify(context.Background(), "the weather is nice")
			if got.Intent != tt.wantIntent {
				t.Errorf("Intent = %v, want %v", got.Intent, tt.wantIntent)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestPatternOrderBeatsCatchAll(t *testing.T) {
	c := NewClassifier(nil)

	// These all contain phrasing the create-task catch-all could swallow;
	// the more specific intents must win.
	tests := []struct {
		message  string
		expected Intent
	}{
		{"deleting the fence painting is a task i finished yesterday", IntentCompleteTask},
		{"completed my habit of reading", IntentCompleteHabit},
		{"edit the task about painting", IntentEditTask},
	}

	for _, tt := range tests {
		got := c.Classify(context.Background(), tt.message)
		if got.Intent != tt.expected {
			t.Errorf("Classify(%q).Intent = %v, want %v", tt.message, got.Intent, tt.expected)
		}
	}
}
