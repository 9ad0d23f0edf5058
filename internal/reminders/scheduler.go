// Package reminders delivers scheduled reminders and the daily task report.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taskmindbot/taskmind/internal/logging"
	"github.com/taskmindbot/taskmind/internal/tasks"
)

var timeNow = time.Now

// Store is the persistence surface the scheduler needs.
type Store interface {
	DueReminders(ctx context.Context, before time.Time) ([]*tasks.Reminder, error)
	MarkReminderSent(ctx context.Context, id string) error
	ListOpen(ctx context.Context) ([]*tasks.Task, error)
}

// Notifier delivers a message to a user.
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// Config controls the scheduler.
type Config struct {
	// DailyReport is a cron expression for the open-task summary.
	// Empty disables the report.
	DailyReport string `yaml:"daily_report"`
	// ReportUser receives the daily report.
	ReportUser string `yaml:"report_user"`
}

// DefaultConfig returns a scheduler config with the report at 9am.
func DefaultConfig() Config {
	return Config{DailyReport: "0 9 * * *"}
}

// Scheduler polls for due reminders and sends the daily report.
type Scheduler struct {
	cfg      Config
	store    Store
	notifier Notifier
	cron     *cron.Cron
	log      *slog.Logger
}

// NewScheduler creates a Scheduler. Call Start to begin delivery.
func NewScheduler(cfg Config, store Store, notifier Notifier) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		cron:     cron.New(),
		log:      logging.WithComponent("reminders"),
	}
}

// Start registers the cron jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", func() {
		if err := s.DeliverDue(context.Background()); err != nil {
			s.log.Error("Failed to deliver reminders", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reminder delivery: %w", err)
	}

	if s.cfg.DailyReport != "" {
		if _, err := s.cron.AddFunc(s.cfg.DailyReport, func() {
			if err := s.SendDailyReport(context.Background()); err != nil {
				s.log.Error("Failed to send daily report", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("invalid daily report schedule %q: %w", s.cfg.DailyReport, err)
		}
	}

	s.cron.Start()
	s.log.Info("Reminder scheduler started", "daily_report", s.cfg.DailyReport)
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Reminder scheduler stopped")
}

// DeliverDue sends every unsent reminder that has come due. A reminder is
// marked sent only after successful delivery, so failed sends are retried
// on the next tick.
func (s *Scheduler) DeliverDue(ctx context.Context) error {
	due, err := s.store.DueReminders(ctx, timeNow())
	if err != nil {
		return fmt.Errorf("failed to load due reminders: %w", err)
	}

	for _, r := range due {
		if err := s.notifier.Notify(ctx, r.UserID, "⏰ Reminder: "+r.Message); err != nil {
			s.log.Error("Failed to notify", "reminder_id", r.ID, "error", err)
			continue
		}
		if err := s.store.MarkReminderSent(ctx, r.ID); err != nil {
			s.log.Error("Failed to mark reminder sent", "reminder_id", r.ID, "error", err)
		}
	}
	return nil
}

// SendDailyReport sends the open-task summary to the configured user.
func (s *Scheduler) SendDailyReport(ctx context.Context) error {
	if s.cfg.ReportUser == "" {
		return nil
	}

	open, err := s.store.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("failed to load open tasks: %w", err)
	}

	return s.notifier.Notify(ctx, s.cfg.ReportUser, FormatReport(open))
}

// FormatReport renders the open-task summary.
func FormatReport(open []*tasks.Task) string {
	if len(open) == 0 {
		return "📋 Daily report: no open tasks. Nice work!"
	}

	report := fmt.Sprintf("📋 Daily report: %d open task(s)\n", len(open))
	for _, t := range open {
		line := "• " + t.Description
		if t.DueDate != "" {
			line += " (due " + t.DueDate + ")"
		}
		report += line + "\n"
	}
	return report
}
