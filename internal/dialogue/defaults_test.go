package dialogue

import (
	"testing"
	"time"
)

// withFixedClock pins the package clock for the duration of a test.
func withFixedClock(t *testing.T, fixed time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = prev })
}

func TestSuggestPriority(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Priority
	}{
		{"urgent keyword", "fix the urgent bug", PriorityUrgent},
		{"asap", "need this asap", PriorityUrgent},
		{"critical", "critical production issue", PriorityUrgent},
		{"important", "important meeting prep", PriorityHigh},
		{"soon", "should get to this soon", PriorityHigh},
		{"low", "low effort cleanup", PriorityLow},
		{"whenever", "do it whenever", PriorityLow},
		{"default medium", "buy groceries", PriorityMedium},
		// Earlier group wins when keywords from several groups appear
		{"urgent beats low", "urgent but low impact", PriorityUrgent},
		{"high beats low", "important but later", PriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestPriority(tt.text)
			if got != tt.expected {
				t.Errorf("SuggestPriority(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestSuggestCategory(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"work", "prepare the meeting agenda", "Work"},
		{"personal", "buy a birthday present", "Personal"},
		{"health", "book a doctor appointment", "Health"},
		{"learning", "study for the exam", "Learning"},
		{"finance", "pay the electricity bill", "Finance"},
		{"no match", "something unclassifiable", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestCategory(tt.text)
			if got != tt.expected {
				t.Errorf("SuggestCategory(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestSuggestDueDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	withFixedClock(t, now)

	day := func(offset int) time.Time {
		return time.Date(2025, 3, 10+offset, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		text     string
		expected time.Time
		found    bool
	}{
		{"today", "finish the report today", day(0), true},
		{"tomorrow", "call the bank tomorrow", day(1), true},
		{"next week", "plan the trip next week", day(7), true},
		{"this week", "clean the garage this week", day(3), true},
		{"next month", "renew the contract next month", day(30), true},
		{"no phrase", "buy groceries", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SuggestDueDate(tt.text, nil)
			if ok != tt.found {
				t.Fatalf("SuggestDueDate(%q) found = %v, want %v", tt.text, ok, tt.found)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("SuggestDueDate(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestSuggestDueDateEntityPassthrough(t *testing.T) {
	explicit := time.Date(2025, 6, 1, 9, 45, 0, 0, time.UTC)
	entities := map[string]any{"date": explicit}

	got, ok := SuggestDueDate("do it tomorrow", entities)
	if !ok {
		t.Fatal("expected a date")
	}
	if !got.Equal(explicit) {
		t.Errorf("date entity must pass through unchanged, got %v", got)
	}
}

func TestEnrich(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	withFixedClock(t, now)

	text := "Add an urgent work task to fix the critical bug by tomorrow"
	out := Enrich(text, map[string]any{"task": "fix the critical bug"})

	if got := out[EntitySuggestedPriority]; got != "Urgent" {
		t.Errorf("suggested_priority = %v, want Urgent", got)
	}
	if got := out[EntitySuggestedCategory]; got != "Work" {
		t.Errorf("suggested_category = %v, want Work", got)
	}
	want := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if got, ok := out[EntitySuggestedDate].(time.Time); !ok || !got.Equal(want) {
		t.Errorf("suggested_date = %v, want %v", out[EntitySuggestedDate], want)
	}
	if got := out["task"]; got != "fix the critical bug" {
		t.Errorf("extractor entity clobbered: task = %v", got)
	}
}

func TestEnrichDoesNotClobber(t *testing.T) {
	entities := map[string]any{
		EntitySuggestedPriority: "Low",
		EntitySuggestedCategory: "Personal",
	}
	out := Enrich("urgent work thing", entities)

	if got := out[EntitySuggestedPriority]; got != "Low" {
		t.Errorf("suggested_priority = %v, want Low (pre-existing)", got)
	}
	if got := out[EntitySuggestedCategory]; got != "Personal" {
		t.Errorf("suggested_category = %v, want Personal (pre-existing)", got)
	}
}

func TestEnrichNormalizesDateEntity(t *testing.T) {
	explicit := time.Date(2025, 6, 1, 9, 45, 0, 0, time.UTC)
	out := Enrich("ship the release", map[string]any{"date": explicit})

	// The raw entity stays untouched...
	if got, ok := out["date"].(time.Time); !ok || !got.Equal(explicit) {
		t.Errorf("date = %v, want %v", out["date"], explicit)
	}
	// ...but a date-only copy is exposed for display.
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if got, ok := out[EntitySuggestedDate].(time.Time); !ok || !got.Equal(want) {
		t.Errorf("suggested_date = %v, want %v", out[EntitySuggestedDate], want)
	}
}
