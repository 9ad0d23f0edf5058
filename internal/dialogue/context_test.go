package dialogue

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func TestGetCreatesDefaultContext(t *testing.T) {
	s := NewContextStore()

	nc := s.Get("user-1")
	if nc == nil {
		t.Fatal("Get returned nil")
	}
	if nc.CurrentIntent != IntentUnknown {
		t.Errorf("CurrentIntent = %v, want unknown", nc.CurrentIntent)
	}
	if nc.Type != ContextGeneral {
		t.Errorf("Type = %v, want general", nc.Type)
	}
	if nc.Confidence != 0.0 {
		t.Errorf("Confidence = %v, want 0.0", nc.Confidence)
	}
	if len(nc.Entities) != 0 {
		t.Errorf("Entities = %v, want empty", nc.Entities)
	}
	if nc.Creation != nil {
		t.Error("Creation should be nil for a fresh context")
	}
}

func TestGetIsIdempotent(t *testing.T) {
	s := NewContextStore()

	first := s.Get("user-1")
	second := s.Get("user-1")
	if first != second {
		t.Error("Get should return the same context without an intervening update")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("contexts differ between consecutive Get calls")
	}
}

func TestGetSeparatesUsers(t *testing.T) {
	s := NewContextStore()

	a := s.Get("user-a")
	b := s.Get("user-b")
	a.CurrentIntent = IntentCreateTask
	if b.CurrentIntent == IntentCreateTask {
		t.Error("contexts are shared between users")
	}
}

func TestAddToHistoryBound(t *testing.T) {
	s := NewContextStore()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		s.AddToHistory("user-1", Interaction{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Input:     fmt.Sprintf("message %d", i),
			Intent:    IntentCreateTask,
		})
	}

	history := s.History("user-1")
	if len(history) != 20 {
		t.Fatalf("history length = %d, want 20", len(history))
	}
	// The 20 most recent entries survive, in arrival order.
	for i, entry := range history {
		want := fmt.Sprintf("message %d", i+5)
		if entry.Input != want {
			t.Errorf("history[%d].Input = %q, want %q", i, entry.Input, want)
		}
	}

	// The context mirrors only the most recent 10.
	nc := s.Get("user-1")
	if len(nc.UserHistory) != 10 {
		t.Fatalf("UserHistory length = %d, want 10", len(nc.UserHistory))
	}
	if nc.UserHistory[9].Input != "message 24" {
		t.Errorf("UserHistory last = %q, want %q", nc.UserHistory[9].Input, "message 24")
	}
	if nc.UserHistory[0].Input != "message 15" {
		t.Errorf("UserHistory first = %q, want %q", nc.UserHistory[0].Input, "message 15")
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := NewContextStore()
	s.AddToHistory("user-1", Interaction{Input: "original"})

	history := s.History("user-1")
	history[0].Input = "mutated"

	if s.History("user-1")[0].Input != "original" {
		t.Error("History must return a copy, not the backing slice")
	}
}
