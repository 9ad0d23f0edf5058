package main

import (
	"strings"
	"testing"

	"github.com/taskmindbot/taskmind/internal/tasks"
)

func TestRenderTaskList(t *testing.T) {
	open := []*tasks.Task{
		{Description: "file taxes", Priority: "Urgent", Category: "Finance", DueDate: "2025-04-15"},
		{Description: "water plants", Priority: "Medium"},
	}

	got := renderTaskList(open)
	if !strings.Contains(got, "file taxes") {
		t.Errorf("list = %q", got)
	}
	if !strings.Contains(got, "Finance, due 2025-04-15") {
		t.Errorf("list = %q", got)
	}
	if !strings.Contains(got, "water plants") {
		t.Errorf("list = %q", got)
	}
}

func TestRenderTaskListEmpty(t *testing.T) {
	got := renderTaskList(nil)
	if !strings.Contains(got, "Open tasks (0)") {
		t.Errorf("list = %q", got)
	}
	if !strings.Contains(got, "Nothing open") {
		t.Errorf("list = %q", got)
	}
}

func TestRenderAnalytics(t *testing.T) {
	got := renderAnalytics(&tasks.Analytics{Total: 4, Completed: 3, Pending: 1, CompletionRate: 0.75})
	if !strings.Contains(got, "Rate: 75%") {
		t.Errorf("analytics = %q", got)
	}
}
