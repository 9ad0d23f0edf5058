package reminders

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/taskmindbot/taskmind/internal/tasks"
)

type fakeStore struct {
	due    []*tasks.Reminder
	open   []*tasks.Task
	sent   []string
	dueErr error
}

func (f *fakeStore) DueReminders(_ context.Context, _ time.Time) ([]*tasks.Reminder, error) {
	return f.due, f.dueErr
}

func (f *fakeStore) MarkReminderSent(_ context.Context, id string) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeStore) ListOpen(_ context.Context) ([]*tasks.Task, error) {
	return f.open, nil
}

type fakeNotifier struct {
	messages map[string][]string
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, userID, message string) error {
	if f.err != nil {
		return f.err
	}
	if f.messages == nil {
		f.messages = make(map[string][]string)
	}
	f.messages[userID] = append(f.messages[userID], message)
	return nil
}

func TestDeliverDue(t *testing.T) {
	store := &fakeStore{
		due: []*tasks.Reminder{
			{ID: "r1", UserID: "42", Message: "standup notes"},
			{ID: "r2", UserID: "43", Message: "submit expenses"},
		},
	}
	notifier := &fakeNotifier{}
	s := NewScheduler(DefaultConfig(), store, notifier)

	if err := s.DeliverDue(context.Background()); err != nil {
		t.Fatalf("DeliverDue error: %v", err)
	}

	if len(notifier.messages["42"]) != 1 || len(notifier.messages["43"]) != 1 {
		t.Fatalf("messages = %v", notifier.messages)
	}
	if !strings.Contains(notifier.messages["42"][0], "standup notes") {
		t.Errorf("message = %q", notifier.messages["42"][0])
	}
	if len(store.sent) != 2 {
		t.Errorf("sent = %v, want both reminders marked", store.sent)
	}
}

func TestDeliverDueRetriesOnNotifyFailure(t *testing.T) {
	store := &fakeStore{
		due: []*tasks.Reminder{{ID: "r1", UserID: "42", Message: "hello"}},
	}
	notifier := &fakeNotifier{err: errors.New("network down")}
	s := NewScheduler(DefaultConfig(), store, notifier)

	if err := s.DeliverDue(context.Background()); err != nil {
		t.Fatalf("DeliverDue error: %v", err)
	}
	if len(store.sent) != 0 {
		t.Errorf("sent = %v, failed delivery must not be marked", store.sent)
	}
}

func TestSendDailyReport(t *testing.T) {
	store := &fakeStore{
		open: []*tasks.Task{
			{Description: "review documents", DueDate: "2025-03-11"},
			{Description: "water plants"},
		},
	}
	notifier := &fakeNotifier{}
	cfg := DefaultConfig()
	cfg.ReportUser = "42"
	s := NewScheduler(cfg, store, notifier)

	if err := s.SendDailyReport(context.Background()); err != nil {
		t.Fatalf("SendDailyReport error: %v", err)
	}

	msgs := notifier.messages["42"]
	if len(msgs) != 1 {
		t.Fatalf("messages = %v", msgs)
	}
	if !strings.Contains(msgs[0], "2 open task(s)") {
		t.Errorf("report = %q", msgs[0])
	}
	if !strings.Contains(msgs[0], "review documents (due 2025-03-11)") {
		t.Errorf("report = %q", msgs[0])
	}
}

func TestSendDailyReportNoUser(t *testing.T) {
	notifier := &fakeNotifier{}
	s := NewScheduler(Config{}, &fakeStore{}, notifier)

	if err := s.SendDailyReport(context.Background()); err != nil {
		t.Fatalf("SendDailyReport error: %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Errorf("messages = %v, want none", notifier.messages)
	}
}

func TestFormatReportEmpty(t *testing.T) {
	got := FormatReport(nil)
	if !strings.Contains(got, "no open tasks") {
		t.Errorf("report = %q", got)
	}
}
