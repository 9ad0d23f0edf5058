package tasks

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGetTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTask(ctx, "review documents", "High", "Work", "2025-03-11", "acme")
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty task ID")
	}

	task, err := store.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("GetTask error: %v", err)
	}
	if task.Description != "review documents" {
		t.Errorf("description = %q", task.Description)
	}
	if task.Priority != "High" {
		t.Errorf("priority = %q", task.Priority)
	}
	if task.Category != "Work" {
		t.Errorf("category = %q", task.Category)
	}
	if task.DueDate != "2025-03-11" {
		t.Errorf("due date = %q", task.DueDate)
	}
	if task.Client != "acme" {
		t.Errorf("client = %q", task.Client)
	}
	if task.Done {
		t.Error("new task should not be done")
	}
}

func TestCreateTaskDefaultsPriority(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTask(ctx, "buy milk", "", "", "", "")
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	task, err := store.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("GetTask error: %v", err)
	}
	if task.Priority != "Medium" {
		t.Errorf("priority = %q, want Medium", task.Priority)
	}
}

func TestCreateTaskRequiresDescription(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.CreateTask(context.Background(), "", "", "", "", ""); err == nil {
		t.Fatal("expected error for empty description")
	}
}

func TestCompleteTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTask(ctx, "call dentist", "", "", "", "")
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}

	if err := store.CompleteTask(ctx, id); err != nil {
		t.Fatalf("CompleteTask error: %v", err)
	}

	task, err := store.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("GetTask error: %v", err)
	}
	if !task.Done {
		t.Error("task should be done")
	}
	if task.CompletedAt == nil {
		t.Error("completed_at should be set")
	}

	// Completing twice is an error.
	if err := store.CompleteTask(ctx, id); err == nil {
		t.Error("expected error completing an already-done task")
	}
}

func TestListOpen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, _ := store.CreateTask(ctx, "first task", "", "", "", "")
	second, _ := store.CreateTask(ctx, "second task", "", "", "", "")
	if err := store.CompleteTask(ctx, second); err != nil {
		t.Fatalf("CompleteTask error: %v", err)
	}

	open, err := store.ListOpen(ctx)
	if err != nil {
		t.Fatalf("ListOpen error: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("len(open) = %d, want 1", len(open))
	}
	if open[0].ID != first {
		t.Errorf("open task = %s, want %s", open[0].ID, first)
	}
}

func TestSearchTasks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateTask(ctx, "review budget report", "", "", "", ""); err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if _, err := store.CreateTask(ctx, "water the plants", "", "", "", ""); err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}

	results, err := store.SearchTasks(ctx, "budget")
	if err != nil {
		t.Fatalf("SearchTasks error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Description != "review budget report" {
		t.Errorf("result = %q", results[0].Description)
	}
}

func TestDeleteTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateTask(ctx, "temporary", "", "", "", "")
	if err := store.DeleteTask(ctx, id); err != nil {
		t.Fatalf("DeleteTask error: %v", err)
	}
	if err := store.DeleteTask(ctx, id); err == nil {
		t.Error("expected error deleting a missing task")
	}
}

func TestHabits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddHabit(ctx, "meditation"); err != nil {
		t.Fatalf("AddHabit error: %v", err)
	}

	streak, err := store.CompleteHabit(ctx, "meditation")
	if err != nil {
		t.Fatalf("CompleteHabit error: %v", err)
	}
	if streak != 1 {
		t.Errorf("streak = %d, want 1", streak)
	}

	streak, err = store.CompleteHabit(ctx, "meditation")
	if err != nil {
		t.Fatalf("CompleteHabit error: %v", err)
	}
	if streak != 2 {
		t.Errorf("streak = %d, want 2", streak)
	}

	if _, err := store.CompleteHabit(ctx, "unknown habit"); err == nil {
		t.Error("expected error for unknown habit")
	}
}

func TestReminders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	past, err := store.AddReminder(ctx, "42", "standup notes", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("AddReminder error: %v", err)
	}
	if _, err := store.AddReminder(ctx, "42", "future thing", now.Add(time.Hour)); err != nil {
		t.Fatalf("AddReminder error: %v", err)
	}

	due, err := store.DueReminders(ctx, now)
	if err != nil {
		t.Fatalf("DueReminders error: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("len(due) = %d, want 1", len(due))
	}
	if due[0].Message != "standup notes" {
		t.Errorf("message = %q", due[0].Message)
	}

	if err := store.MarkReminderSent(ctx, past); err != nil {
		t.Fatalf("MarkReminderSent error: %v", err)
	}
	due, err = store.DueReminders(ctx, now)
	if err != nil {
		t.Fatalf("DueReminders error: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("len(due) = %d after send, want 0", len(due))
	}
}

func TestGetAnalytics(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.GetAnalytics(ctx)
	if err != nil {
		t.Fatalf("GetAnalytics error: %v", err)
	}
	if a.Total != 0 || a.CompletionRate != 0 {
		t.Errorf("empty analytics = %+v", a)
	}

	id, _ := store.CreateTask(ctx, "one", "", "", "", "")
	if _, err := store.CreateTask(ctx, "two", "", "", "", ""); err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if err := store.CompleteTask(ctx, id); err != nil {
		t.Fatalf("CompleteTask error: %v", err)
	}

	a, err = store.GetAnalytics(ctx)
	if err != nil {
		t.Fatalf("GetAnalytics error: %v", err)
	}
	if a.Total != 2 || a.Completed != 1 || a.Pending != 1 {
		t.Errorf("analytics = %+v", a)
	}
	if a.CompletionRate != 0.5 {
		t.Errorf("completion rate = %v, want 0.5", a.CompletionRate)
	}
}

func TestAddClient(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddClient(ctx, "Acme Industries"); err != nil {
		t.Fatalf("AddClient error: %v", err)
	}
	// Name is unique.
	if _, err := store.AddClient(ctx, "Acme Industries"); err == nil {
		t.Error("expected error for duplicate client")
	}
}
