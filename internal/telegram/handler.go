package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/taskmindbot/taskmind/internal/dialogue"
	"github.com/taskmindbot/taskmind/internal/logging"
	"github.com/taskmindbot/taskmind/internal/tasks"
)

// maxMessageLength is Telegram's message size limit, with headroom.
const maxMessageLength = 4000

var timeNow = time.Now

// Sender is the outbound surface of the bot API client.
type Sender interface {
	SendMessage(ctx context.Context, chatID, text, parseMode string) (*SendMessageResponse, error)
	SendMessageWithKeyboard(ctx context.Context, chatID, text, parseMode string, keyboard [][]InlineKeyboardButton) (*SendMessageResponse, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Store is the persistence surface the handler needs for slash commands.
type Store interface {
	ListOpen(ctx context.Context) ([]*tasks.Task, error)
	SearchTasks(ctx context.Context, query string) ([]*tasks.Task, error)
	CompleteTask(ctx context.Context, id string) error
	AddHabit(ctx context.Context, name string) (string, error)
	CompleteHabit(ctx context.Context, name string) (int, error)
	AddClient(ctx context.Context, name string) (string, error)
	AddReminder(ctx context.Context, userID, message string, remindAt time.Time) (string, error)
	GetAnalytics(ctx context.Context) (*tasks.Analytics, error)
}

// HandlerConfig tunes the handler's transport behavior.
type HandlerConfig struct {
	// PlainText disables MarkdownV2 parse mode.
	PlainText bool
	// AllowedChat restricts the bot to one chat ID. Zero allows all chats.
	AllowedChat int64
}

// Handler routes Telegram updates: free text goes through the dialogue
// engine, slash commands hit the store directly, and button callbacks advance
// the guided task-creation dialogue.
type Handler struct {
	sender Sender
	engine *dialogue.Processor
	store  Store
	cfg    HandlerConfig
	log    *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(sender Sender, engine *dialogue.Processor, store Store, cfg HandlerConfig) *Handler {
	return &Handler{
		sender: sender,
		engine: engine,
		store:  store,
		cfg:    cfg,
		log:    logging.WithComponent("telegram"),
	}
}

// parseMode returns the parse mode for outbound messages.
func (h *Handler) parseMode() string {
	if h.cfg.PlainText {
		return ""
	}
	return "MarkdownV2"
}

// Notify delivers a message to a user. It implements the reminder
// scheduler's notifier.
func (h *Handler) Notify(ctx context.Context, userID, message string) error {
	_, err := h.sender.SendMessage(ctx, userID, message, h.parseMode())
	return err
}

// processUpdate dispatches one Telegram update.
func (h *Handler) processUpdate(ctx context.Context, update *Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		h.handleMessage(ctx, update.Message)
	}
}

// handleMessage routes one text message.
func (h *Handler) handleMessage(ctx context.Context, msg *Message) {
	if msg.Chat == nil {
		return
	}
	if h.cfg.AllowedChat != 0 && msg.Chat.ID != h.cfg.AllowedChat {
		h.log.Debug("Ignoring message from disallowed chat", slog.Int64("chat_id", msg.Chat.ID))
		return
	}

	userID := strconv.FormatInt(msg.Chat.ID, 10)
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/") {
		h.handleCommand(ctx, userID, text)
		return
	}

	result := h.engine.Process(ctx, text, userID)

	// If the message advanced a guided dialogue, attach the keyboard for
	// whatever field the dialogue now waits on.
	if nc := h.engine.Store().Get(userID); nc.Creation != nil {
		h.sendWithKeyboard(ctx, userID, result.Response, keyboardForStep(nc.Creation.Step))
		return
	}
	h.send(ctx, userID, result.Response)
}

// handleCommand executes one slash command.
func (h *Handler) handleCommand(ctx context.Context, userID, text string) {
	cmd, args, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@") // strip bot mention
	args = strings.TrimSpace(args)

	h.log.Debug("Handling command", slog.String("command", cmd), slog.String("user_id", userID))

	switch cmd {
	case "/start", "/help":
		h.send(ctx, userID, helpText)

	case "/add":
		outcome := h.engine.StartCreation(userID)
		if args != "" {
			if advanced, err := h.engine.HandleStep(ctx, userID, dialogue.StepDescription, args); err == nil {
				outcome = advanced
			}
		}
		h.sendWithKeyboard(ctx, userID, outcome.Prompt, keyboardForStep(outcome.State))

	case "/cancel":
		h.cancelDialogue(ctx, userID)

	case "/list":
		open, err := h.store.ListOpen(ctx)
		if err != nil {
			h.sendError(ctx, userID, err)
			return
		}
		h.send(ctx, userID, FormatTaskList(open))

	case "/done":
		h.completeByQuery(ctx, userID, args)

	case "/search":
		h.searchTasks(ctx, userID, args)

	case "/habit_add":
		if args == "" {
			h.send(ctx, userID, "Usage: /habit_add <name>")
			return
		}
		if _, err := h.store.AddHabit(ctx, args); err != nil {
			h.sendError(ctx, userID, err)
			return
		}
		h.send(ctx, userID, fmt.Sprintf("🌱 Habit added: %s. Log it with /habit_done %s", args, args))

	case "/habit_done":
		if args == "" {
			h.send(ctx, userID, "Usage: /habit_done <name>")
			return
		}
		streak, err := h.store.CompleteHabit(ctx, args)
		if err != nil {
			h.sendError(ctx, userID, err)
			return
		}
		h.send(ctx, userID, fmt.Sprintf("🔥 %s logged. Streak: %d", args, streak))

	case "/client_add":
		if args == "" {
			h.send(ctx, userID, "Usage: /client_add <name>")
			return
		}
		if _, err := h.store.AddClient(ctx, args); err != nil {
			h.sendError(ctx, userID, err)
			return
		}
		h.send(ctx, userID, fmt.Sprintf("👤 Client added: %s", args))

	case "/remind":
		h.scheduleReminder(ctx, userID, args)

	case "/analytics":
		analytics, err := h.store.GetAnalytics(ctx)
		if err != nil {
			h.sendError(ctx, userID, err)
			return
		}
		h.send(ctx, userID, FormatAnalytics(analytics))

	default:
		h.send(ctx, userID, "🤔 Unknown command. Try /help.")
	}
}

// cancelDialogue abandons the guided dialogue regardless of its state.
func (h *Handler) cancelDialogue(ctx context.Context, userID string) {
	nc := h.engine.Store().Get(userID)
	if nc.Creation == nil {
		h.send(ctx, userID, "Nothing to cancel.")
		return
	}
	nc.Creation = nil
	nc.Type = dialogue.ContextGeneral
	h.engine.Store().Update(userID, nc)
	h.send(ctx, userID, "❌ Task creation cancelled.")
}

// completeByQuery finds the first open task matching the query and marks
// it done.
func (h *Handler) completeByQuery(ctx context.Context, userID, query string) {
	if query == "" {
		h.send(ctx, userID, "Usage: /done <text>")
		return
	}

	matches, err := h.store.SearchTasks(ctx, query)
	if err != nil {
		h.sendError(ctx, userID, err)
		return
	}

	for _, t := range matches {
		if t.Done {
			continue
		}
		if err := h.store.CompleteTask(ctx, t.ID); err != nil {
			h.sendError(ctx, userID, err)
			return
		}
		h.send(ctx, userID, fmt.Sprintf("✅ Done: %s", t.Description))
		return
	}
	h.send(ctx, userID, fmt.Sprintf("🔍 No open task matching %q.", query))
}

// searchTasks lists tasks matching the query, open and done alike.
func (h *Handler) searchTasks(ctx context.Context, userID, query string) {
	if query == "" {
		h.send(ctx, userID, "Usage: /search <text>")
		return
	}

	matches, err := h.store.SearchTasks(ctx, query)
	if err != nil {
		h.sendError(ctx, userID, err)
		return
	}
	if len(matches) == 0 {
		h.send(ctx, userID, fmt.Sprintf("🔍 No tasks matching %q.", query))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 Tasks matching %q:\n\n", query))
	for _, t := range matches {
		marker := "⬜"
		if t.Done {
			marker = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, t.Description))
	}
	h.send(ctx, userID, sb.String())
}

// scheduleReminder parses "/remind [tomorrow|HH:MM] <text>" and stores it.
func (h *Handler) scheduleReminder(ctx context.Context, userID, args string) {
	if args == "" {
		h.send(ctx, userID, "Usage: /remind [tomorrow|HH:MM] <text>")
		return
	}

	remindAt, message := parseRemindAt(args)
	if _, err := h.store.AddReminder(ctx, userID, message, remindAt); err != nil {
		h.sendError(ctx, userID, err)
		return
	}
	h.send(ctx, userID, fmt.Sprintf("⏰ Reminder set for %s: %s",
		remindAt.Format("Mon, Jan 2 15:04"), message))
}

// parseRemindAt extracts a delivery time from the reminder arguments.
// "tomorrow" means 9am the next day; "HH:MM" means the next occurrence of
// that clock time; anything else schedules one hour out.
func parseRemindAt(args string) (time.Time, string) {
	now := timeNow()
	first, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)

	if strings.EqualFold(first, "tomorrow") && rest != "" {
		next := now.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), 9, 0, 0, 0, now.Location()), rest
	}

	if clock, err := time.Parse("15:04", first); err == nil && rest != "" {
		at := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at, rest
	}

	return now.Add(time.Hour), args
}

// handleCallback advances the guided dialogue from a button press.
func (h *Handler) handleCallback(ctx context.Context, cq *CallbackQuery) {
	if err := h.sender.AnswerCallback(ctx, cq.ID, ""); err != nil {
		h.log.Warn("Failed to answer callback", slog.Any("error", err))
	}

	var chatID int64
	if cq.Message != nil && cq.Message.Chat != nil {
		chatID = cq.Message.Chat.ID
	} else if cq.From != nil {
		chatID = cq.From.ID
	} else {
		return
	}
	if h.cfg.AllowedChat != 0 && chatID != h.cfg.AllowedChat {
		return
	}
	userID := strconv.FormatInt(chatID, 10)

	step, value, _ := strings.Cut(cq.Data, ":")
	if value == "skip" {
		value = ""
	}
	if step == string(dialogue.StepDueDate) && value != "" {
		value = resolveDueDate(value)
	}

	outcome, err := h.engine.HandleStep(ctx, userID, dialogue.StepType(step), value)
	switch {
	case errors.Is(err, dialogue.ErrNoActiveSession):
		h.send(ctx, userID, "That dialogue has expired. Send /add to start a new task.")
	case errors.Is(err, dialogue.ErrInvalidStep):
		h.send(ctx, userID, "That button isn't valid right now.")
	case err != nil:
		h.sendError(ctx, userID, err)
	default:
		h.sendWithKeyboard(ctx, userID, outcome.Prompt, keyboardForStep(outcome.State))
	}
}

// resolveDueDate turns a due-date button value into a concrete date.
func resolveDueDate(value string) string {
	now := timeNow()
	switch strings.ToLower(value) {
	case "today":
		return now.Format("2006-01-02")
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	case "next week":
		return now.AddDate(0, 0, 7).Format("2006-01-02")
	default:
		return value
	}
}

// send delivers text to a chat, splitting messages over Telegram's limit.
func (h *Handler) send(ctx context.Context, chatID, text string) {
	for _, chunk := range chunkContent(text, maxMessageLength) {
		if _, err := h.sender.SendMessage(ctx, chatID, chunk, h.parseMode()); err != nil {
			h.log.Error("Failed to send message", slog.String("chat_id", chatID), slog.Any("error", err))
			return
		}
	}
}

// sendWithKeyboard delivers text with an inline keyboard. A nil keyboard
// degrades to a plain message.
func (h *Handler) sendWithKeyboard(ctx context.Context, chatID, text string, keyboard [][]InlineKeyboardButton) {
	if keyboard == nil {
		h.send(ctx, chatID, text)
		return
	}
	if _, err := h.sender.SendMessageWithKeyboard(ctx, chatID, text, h.parseMode(), keyboard); err != nil {
		h.log.Error("Failed to send keyboard message", slog.String("chat_id", chatID), slog.Any("error", err))
	}
}

// sendError reports a command failure to the user.
func (h *Handler) sendError(ctx context.Context, chatID string, err error) {
	h.log.Warn("Command failed", slog.String("chat_id", chatID), slog.Any("error", err))
	h.send(ctx, chatID, "⚠️ "+err.Error())
}
