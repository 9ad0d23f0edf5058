package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taskmindbot/taskmind/internal/logging"
)

// Updater fetches updates from the bot API.
type Updater interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]*Update, error)
}

// Transport runs the long-polling loop and feeds updates to the Handler.
type Transport struct {
	client  Updater
	handler *Handler
	offset  int64
	mu      sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewTransport creates a new Telegram transport layer.
func NewTransport(client Updater, handler *Handler) *Transport {
	return &Transport{
		client:  client,
		handler: handler,
		stopCh:  make(chan struct{}),
	}
}

// StartPolling begins the long-polling loop in a goroutine.
func (t *Transport) StartPolling(ctx context.Context) {
	t.wg.Add(1)
	go t.pollLoop(ctx)
}

// Stop gracefully stops the polling loop.
func (t *Transport) Stop() {
	close(t.stopCh)
	t.wg.Wait()
}

// pollLoop continuously fetches and processes updates.
func (t *Transport) pollLoop(ctx context.Context) {
	defer t.wg.Done()

	logging.WithComponent("telegram").Debug("Transport poll loop started")

	for {
		select {
		case <-ctx.Done():
			logging.WithComponent("telegram").Debug("Transport poll loop stopped")
			return
		case <-t.stopCh:
			logging.WithComponent("telegram").Debug("Transport poll loop stopped")
			return
		default:
			t.fetchAndProcess(ctx)
		}
	}
}

// fetchAndProcess fetches updates from Telegram and processes them.
func (t *Transport) fetchAndProcess(ctx context.Context) {
	updates, err := t.client.GetUpdates(ctx, t.offset, 30)
	if err != nil {
		if ctx.Err() == nil {
			logging.WithComponent("telegram").Warn("Error fetching updates", slog.Any("error", err))
		}
		time.Sleep(time.Second)
		return
	}

	for _, update := range updates {
		if t.handler != nil {
			t.handler.processUpdate(ctx, update)
		}

		// Update offset to acknowledge this update
		t.mu.Lock()
		if update.UpdateID >= t.offset {
			t.offset = update.UpdateID + 1
		}
		t.mu.Unlock()
	}
}
