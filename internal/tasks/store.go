package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides persistent storage for Taskmind using SQLite.
// It implements the dialogue engine's TaskCreator collaborator and backs the
// list/search/done/habit/client commands. Migrations run on initialization.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a Store with a SQLite database at the given path,
// creating the data directory if needed and running migrations.
func NewStore(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "taskmind.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dataPath}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate creates necessary tables
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			priority TEXT DEFAULT 'Medium',
			category TEXT DEFAULT '',
			client TEXT DEFAULT '',
			due_date TEXT DEFAULT '',
			done BOOLEAN DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			streak INTEGER DEFAULT 0,
			last_done DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS reminders (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			message TEXT NOT NULL,
			remind_at DATETIME NOT NULL,
			sent BOOLEAN DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_done ON tasks(done)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_client ON tasks(client)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(sent, remind_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTask inserts a task and returns its ID. It satisfies the dialogue
// engine's TaskCreator interface.
func (s *Store) CreateTask(ctx context.Context, description, priority, category, dueDate, client string) (string, error) {
	if description == "" {
		return "", fmt.Errorf("task description is required")
	}
	if priority == "" {
		priority = "Medium"
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, description, priority, category, client, due_date) VALUES (?, ?, ?, ?, ?, ?)`,
		id, description, priority, category, client, dueDate)
	if err != nil {
		return "", fmt.Errorf("failed to insert task: %w", err)
	}
	return id, nil
}

// GetTask returns one task by ID.
func (s *Store) GetTask(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, description, priority, category, client, due_date, done, created_at, completed_at
		 FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// ListOpen returns all open tasks, oldest first.
func (s *Store) ListOpen(ctx context.Context) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, priority, category, client, due_date, done, created_at, completed_at
		 FROM tasks WHERE done = FALSE ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTasks(rows)
}

// SearchTasks returns tasks whose description contains the query.
func (s *Store) SearchTasks(ctx context.Context, query string) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, priority, category, client, due_date, done, created_at, completed_at
		 FROM tasks WHERE description LIKE ? ORDER BY created_at`,
		"%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTasks(rows)
}

// CompleteTask marks a task done.
func (s *Store) CompleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET done = TRUE, completed_at = ? WHERE id = ? AND done = FALSE`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no open task with id %s", id)
	}
	return nil
}

// DeleteTask removes a task entirely.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no task with id %s", id)
	}
	return nil
}

// UpdateTask rewrites the mutable fields of a task.
func (s *Store) UpdateTask(ctx context.Context, t *Task) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET description = ?, priority = ?, category = ?, client = ?, due_date = ? WHERE id = ?`,
		t.Description, t.Priority, t.Category, t.Client, t.DueDate, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// AddHabit registers a habit to track.
func (s *Store) AddHabit(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("habit name is required")
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO habits (id, name) VALUES (?, ?)`, id, name)
	if err != nil {
		return "", fmt.Errorf("failed to insert habit: %w", err)
	}
	return id, nil
}

// CompleteHabit increments a habit's streak and returns the new value.
func (s *Store) CompleteHabit(ctx context.Context, name string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE habits SET streak = streak + 1, last_done = ? WHERE name = ?`,
		time.Now().UTC(), name)
	if err != nil {
		return 0, fmt.Errorf("failed to complete habit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("no habit named %s", name)
	}

	var streak int
	err = s.db.QueryRowContext(ctx, `SELECT streak FROM habits WHERE name = ?`, name).Scan(&streak)
	if err != nil {
		return 0, fmt.Errorf("failed to read habit streak: %w", err)
	}
	return streak, nil
}

// AddClient registers a client.
func (s *Store) AddClient(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("client name is required")
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO clients (id, name) VALUES (?, ?)`, id, name)
	if err != nil {
		return "", fmt.Errorf("failed to insert client: %w", err)
	}
	return id, nil
}

// AddReminder schedules a one-shot reminder.
func (s *Store) AddReminder(ctx context.Context, userID, message string, remindAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (id, user_id, message, remind_at) VALUES (?, ?, ?, ?)`,
		id, userID, message, remindAt.UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert reminder: %w", err)
	}
	return id, nil
}

// DueReminders returns unsent reminders due at or before the given time.
func (s *Store) DueReminders(ctx context.Context, before time.Time) ([]*Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, message, remind_at, sent FROM reminders
		 WHERE sent = FALSE AND remind_at <= ? ORDER BY remind_at`,
		before.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reminders []*Reminder
	for rows.Next() {
		r := &Reminder{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.Message, &r.RemindAt, &r.Sent); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// MarkReminderSent flags a reminder as delivered.
func (s *Store) MarkReminderSent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reminders SET sent = TRUE WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

// GetAnalytics returns task completion totals.
func (s *Store) GetAnalytics(ctx context.Context) (*Analytics, error) {
	a := &Analytics{}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN done THEN 1 ELSE 0 END), 0) FROM tasks`).
		Scan(&a.Total, &a.Completed)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics: %w", err)
	}
	a.Pending = a.Total - a.Completed
	if a.Total > 0 {
		a.CompletionRate = float64(a.Completed) / float64(a.Total)
	}
	return a, nil
}

// scanTask scans a single task row.
func scanTask(row *sql.Row) (*Task, error) {
	t := &Task{}
	var completedAt sql.NullTime
	err := row.Scan(&t.ID, &t.Description, &t.Priority, &t.Category, &t.Client,
		&t.DueDate, &t.Done, &t.CreatedAt, &completedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return t, nil
}

// scanTasks scans all task rows.
func scanTasks(rows *sql.Rows) ([]*Task, error) {
	var tasks []*Task
	for rows.Next() {
		t := &Task{}
		var completedAt sql.NullTime
		err := rows.Scan(&t.ID, &t.Description, &t.Priority, &t.Category, &t.Client,
			&t.DueDate, &t.Done, &t.CreatedAt, &completedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if completedAt.Valid {
			t.CompletedAt = &completedAt.Time
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
