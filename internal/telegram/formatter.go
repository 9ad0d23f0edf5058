package telegram

import (
	"fmt"
	"strings"

	"github.com/taskmindbot/taskmind/internal/dialogue"
	"github.com/taskmindbot/taskmind/internal/tasks"
)

// helpText lists the bot commands. Free text works too; the dialogue engine
// figures out the intent.
const helpText = `👋 I'm Taskmind. Tell me what you need in plain words, or use a command:

/add - create a task step by step
/list - show open tasks
/done <text> - complete the task matching <text>
/search <text> - search tasks
/habit_add <name> - track a new habit
/habit_done <name> - log a habit completion
/client_add <name> - register a client
/remind [tomorrow|HH:MM] <text> - schedule a reminder
/analytics - task completion stats
/cancel - abandon the current task creation
/help - this message`

// EscapeMarkdown escapes Telegram MarkdownV2 special characters in user text.
// The dialogue engine receives it as its escape collaborator.
func EscapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)
	return replacer.Replace(text)
}

// FormatTaskList renders open tasks for Telegram.
func FormatTaskList(open []*tasks.Task) string {
	if len(open) == 0 {
		return "📋 No open tasks. Send /add to create one."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Open tasks (%d):\n\n", len(open)))
	for i, t := range open {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, t.Description))
		var tags []string
		if t.Priority != "" && t.Priority != "Medium" {
			tags = append(tags, t.Priority)
		}
		if t.Category != "" {
			tags = append(tags, t.Category)
		}
		if t.DueDate != "" {
			tags = append(tags, "due "+t.DueDate)
		}
		if len(tags) > 0 {
			sb.WriteString(" (" + strings.Join(tags, ", ") + ")")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatAnalytics renders task completion stats.
func FormatAnalytics(a *tasks.Analytics) string {
	if a.Total == 0 {
		return "📊 No tasks yet. Send /add to create your first one."
	}
	return fmt.Sprintf(
		"📊 Task analytics\n\n"+
			"Total: %d\n"+
			"Completed: %d\n"+
			"Pending: %d\n"+
			"Completion rate: %.0f%%",
		a.Total, a.Completed, a.Pending, a.CompletionRate*100)
}

// keyboardForStep returns the inline keyboard for a guided-dialogue state.
// The description step takes free text, so it gets no keyboard.
func keyboardForStep(step dialogue.CreationStep) [][]InlineKeyboardButton {
	switch step {
	case dialogue.StepAwaitingDueDate:
		return [][]InlineKeyboardButton{
			{
				{Text: "Today", CallbackData: "due_date:today"},
				{Text: "Tomorrow", CallbackData: "due_date:tomorrow"},
			},
			{
				{Text: "Next week", CallbackData: "due_date:next week"},
				{Text: "No due date", CallbackData: "due_date:skip"},
			},
		}
	case dialogue.StepAwaitingPriority:
		return [][]InlineKeyboardButton{
			{
				{Text: "🔴 Urgent", CallbackData: "priority:Urgent"},
				{Text: "🟠 High", CallbackData: "priority:High"},
			},
			{
				{Text: "🟡 Medium", CallbackData: "priority:Medium"},
				{Text: "🟢 Low", CallbackData: "priority:Low"},
			},
		}
	case dialogue.StepAwaitingCategory:
		return [][]InlineKeyboardButton{
			{
				{Text: "Work", CallbackData: "category:Work"},
				{Text: "Personal", CallbackData: "category:Personal"},
				{Text: "Health", CallbackData: "category:Health"},
			},
			{
				{Text: "Learning", CallbackData: "category:Learning"},
				{Text: "Finance", CallbackData: "category:Finance"},
				{Text: "Skip", CallbackData: "category:skip"},
			},
		}
	case dialogue.StepAwaitingClient:
		return [][]InlineKeyboardButton{
			{
				{Text: "No client", CallbackData: "client:skip"},
			},
		}
	case dialogue.StepConfirmation:
		return [][]InlineKeyboardButton{
			{
				{Text: "✅ Create", CallbackData: "confirm:yes"},
				{Text: "✏️ Edit", CallbackData: "edit:"},
				{Text: "❌ Cancel", CallbackData: "cancel:"},
			},
		}
	default:
		return nil
	}
}

// chunkContent splits content into chunks of maxLen characters, preferring
// to break at newlines.
func chunkContent(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}

	var chunks []string
	remaining := content

	for len(remaining) > 0 {
		if len(remaining) <= maxLen {
			chunks = append(chunks, remaining)
			break
		}

		breakPoint := maxLen
		if idx := strings.LastIndex(remaining[:maxLen], "\n\n"); idx > maxLen/2 {
			breakPoint = idx + 2
		} else if idx := strings.LastIndex(remaining[:maxLen], "\n"); idx > maxLen/2 {
			breakPoint = idx + 1
		}

		chunks = append(chunks, strings.TrimSpace(remaining[:breakPoint]))
		remaining = strings.TrimSpace(remaining[breakPoint:])
	}

	return chunks
}
