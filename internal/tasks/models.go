// Package tasks provides persistent storage for tasks, habits, clients, and
// reminders using SQLite.
package tasks

import "time"

// Task is a single tracked task.
type Task struct {
	ID          string
	Description string
	Priority    string
	Category    string
	Client      string
	DueDate     string // date-only, "2006-01-02", empty when unset
	Done        bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Habit is a recurring activity with a completion streak.
type Habit struct {
	ID       string
	Name     string
	Streak   int
	LastDone *time.Time
}

// Client is a person or organization tasks can be filed under.
type Client struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Reminder is a scheduled one-shot notification.
type Reminder struct {
	ID       string
	UserID   string
	Message  string
	RemindAt time.Time
	Sent     bool
}

// Analytics summarizes task completion for reporting.
type Analytics struct {
	Total          int
	Completed      int
	Pending        int
	CompletionRate float64
}
