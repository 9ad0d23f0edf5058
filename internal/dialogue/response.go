package dialogue

import (
	"fmt"
	"strings"
	"time"
)

// helpBlock is returned for unknown intent: example phrasings the engine
// understands.
const helpBlock = `🤔 I didn't quite catch that. Here are things you can say:

• "Add a task to review the budget"
• "Remind me to call Sarah tomorrow"
• "Show me my tasks"
• "I finished the report"
• "Search for invoice"
• "Show my stats"

Or use /help for the full command list.`

// ResponseGenerator composes user-visible reply text from a classification
// and enriched entities. All embedded user text goes through the escape
// function before insertion.
type ResponseGenerator struct {
	escape func(string) string
}

// NewResponseGenerator creates a generator. A nil escape function disables
// escaping (plain-text transports).
func NewResponseGenerator(escape func(string) string) *ResponseGenerator {
	if escape == nil {
		escape = func(s string) string { return s }
	}
	return &ResponseGenerator{escape: escape}
}

// Generate selects the fixed per-intent template and fills it in. Intents
// without a template fall back to a single generic sentence.
func (g *ResponseGenerator) Generate(cls Classification, entities map[string]any, params map[string]string) string {
	switch cls.Intent {
	case IntentCreateTask:
		return g.createTaskResponse(cls, entities, params)
	case IntentCompleteTask:
		name := g.escape(firstNonEmpty(params["description"], cls.Fragment, "that task"))
		return fmt.Sprintf("🎉 Nice work! I'll mark %q as done — confirm with /done.", name)
	case IntentListTasks:
		return "📋 Here's what's on your plate — /list shows every open task."
	case IntentSearchTasks:
		if q := firstNonEmpty(params["query"], cls.Fragment); q != "" {
			return fmt.Sprintf("🔍 Looking for %q — /search runs the full query.", g.escape(q))
		}
		return "🔍 What should I search for? Try /search with a keyword."
	case IntentAddHabit:
		name := g.escape(firstNonEmpty(params["name"], cls.Fragment, "your new habit"))
		return fmt.Sprintf("🌱 Great habit! /habit_add will start tracking %q.", name)
	case IntentSetReminder:
		if cls.Fragment != "" {
			return fmt.Sprintf("⏰ Got it — I'll remind you to %s.", g.escape(cls.Fragment))
		}
		return "⏰ Sure, what should I remind you about?"
	case IntentGetAnalytics:
		return "📊 Let me pull up your productivity numbers."
	case IntentUnknown:
		return helpBlock
	default:
		// edit-task, delete-task, complete-habit, add-client
		return "👍 Understood — I've noted what you want to do. Use the suggested command to make it happen."
	}
}

// createTaskResponse assembles the create-task reply with the inferred
// defaults appended as a human-readable clause.
func (g *ResponseGenerator) createTaskResponse(cls Classification, entities map[string]any, params map[string]string) string {
	var sb strings.Builder

	name := firstNonEmpty(params["description"], cls.Fragment)
	if name != "" {
		sb.WriteString(fmt.Sprintf("📝 New task: %s", g.escape(name)))
	} else {
		sb.WriteString("📝 Sounds like a new task.")
	}

	var clauses []string
	if p, ok := entities[EntitySuggestedPriority].(string); ok && p != "" {
		clauses = append(clauses, fmt.Sprintf("%s priority", strings.ToLower(p)))
	}
	if c, ok := entities[EntitySuggestedCategory].(string); ok && c != "" {
		clauses = append(clauses, fmt.Sprintf("filed under %s", c))
	}
	if d, ok := entities[EntitySuggestedDate].(time.Time); ok {
		clauses = append(clauses, fmt.Sprintf("due %s", d.Format("Mon, Jan 2")))
	}
	if len(clauses) > 0 {
		sb.WriteString(fmt.Sprintf("\nI'd suggest: %s.", strings.Join(clauses, ", ")))
	}

	sb.WriteString("\nSend /add to create it, or tap a button below.")
	return sb.String()
}

// firstNonEmpty returns the first non-empty string argument.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
