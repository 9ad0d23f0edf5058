// Package dialogue implements the conversational intent and dialogue engine:
// intent classification, smart defaults, per-user conversational context, and
// the guided task-creation dialogue.
package dialogue

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/taskmindbot/taskmind/internal/logging"
)

// Intent represents the classified purpose of a user message
type Intent string

const (
	IntentCreateTask    Intent = "create-task"
	IntentEditTask      Intent = "edit-task"
	IntentCompleteTask  Intent = "complete-task"
	IntentDeleteTask    Intent = "delete-task"
	IntentListTasks     Intent = "list-tasks"
	IntentSearchTasks   Intent = "search-tasks"
	IntentSetReminder   Intent = "set-reminder"
	IntentGetAnalytics  Intent = "get-analytics"
	IntentAddHabit      Intent = "add-habit"
	IntentCompleteHabit Intent = "complete-habit"
	IntentAddClient     Intent = "add-client"
	IntentUnknown       Intent = "unknown"
)

// Confidence levels are rule-based heuristics, not calibrated probabilities.
const (
	// Browse-style intents (list/search/analytics) always score the same.
	confidenceBrowse = 0.71
	// Long pattern matches score higher than short ones.
	confidenceStrong = 0.9
	confidenceWeak   = 0.7
	// Fallback classifier results score below any direct pattern match.
	confidenceFallback = 0.51
	confidenceNone     = 0.1

	// Match spans longer than this count as strong matches.
	longMatchSpan = 10
)

// Classification is the result of classifying one message.
type Classification struct {
	Intent     Intent
	Confidence float64
	// Fragment is the captured text of the first matching pattern group,
	// typically the task description.
	Fragment string
}

// FallbackClassifier is a coarser single-label classifier consulted only when
// no pattern matches. Labels use underscores (e.g. "create_task") and are
// mapped through fallbackLabels.
type FallbackClassifier interface {
	Label(ctx context.Context, text string) (string, error)
}

// fallbackLabels maps fallback classifier labels to intents.
// Anything not listed here maps to IntentUnknown.
var fallbackLabels = map[string]Intent{
	"create_task":   IntentCreateTask,
	"set_reminder":  IntentSetReminder,
	"get_analytics": IntentGetAnalytics,
	"edit_task":     IntentEditTask,
}

// intentPatterns pairs an intent with its ordered regex patterns.
type intentPatterns struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// patternTable is evaluated top to bottom, first match wins. Ordering is a
// correctness invariant: create-task carries a catch-all pattern
// ("X is a task"), so completion, deletion, editing, habit and client
// patterns must be tested before it.
var patternTable = []intentPatterns{
	{IntentCompleteHabit, []*regexp.Regexp{
		regexp.MustCompile(`(?:did|completed|finished|logged)\s+(?:my\s+)?habit\s*(?:of\s+)?(.*)`),
		regexp.MustCompile(`\bhabit\s+(?:done|complete|completed)\b`),
		regexp.MustCompile(`^log\s+(?:my\s+)?habit\s*(.*)`),
	}},
	{IntentAddHabit, []*regexp.Regexp{
		regexp.MustCompile(`^(?:add|start|create|track)\s+(?:a\s+)?(?:new\s+)?(?:daily\s+)?habit\s*(?:of|:)?\s*(.*)`),
		regexp.MustCompile(`\bnew\s+habit\b`),
	}},
	{IntentCompleteTask, []*regexp.Regexp{
		regexp.MustCompile(`(?:i(?:'ve|\s+have)?\s+)?(?:finished|completed)\s+(?:the\s+)?(?:task\s+)?(.+)`),
		regexp.MustCompile(`(?:i'?m\s+)?done\s+with\s+(.+)`),
		regexp.MustCompile(`mark\s+(.+?)\s+as\s+(?:done|complete|completed)`),
		regexp.MustCompile(`^(?:complete|finish)\s+(?:the\s+)?task\s+(.+)`),
	}},
	{IntentDeleteTask, []*regexp.Regexp{
		regexp.MustCompile(`^(?:delete|remove|drop)\s+(?:the\s+)?(?:task\s+)?(.+)`),
		regexp.MustCompile(`\bcancel\s+(?:the\s+)?task\s+(.+)`),
	}},
	{IntentEditTask, []*regexp.Regexp{
		regexp.MustCompile(`^(?:edit|change|update|modify|rename)\s+(?:the\s+)?task\s*(.*)`),
		regexp.MustCompile(`^(?:edit|change|update|modify)\s+(.+)`),
	}},
	{IntentAddClient, []*regexp.Regexp{
		regexp.MustCompile(`^(?:add|create|new)\s+(?:a\s+)?(?:new\s+)?client\s*(?::|called|named)?\s*(.*)`),
	}},
	{IntentSetReminder, []*regexp.Regexp{
		regexp.MustCompile(`remind\s+me\s*(?:to|about)?\s*(.*)`),
		regexp.MustCompile(`^set\s+(?:a\s+)?reminder\s*(?:to|for)?\s*(.*)`),
	}},
	{IntentListTasks, []*regexp.Regexp{
		regexp.MustCompile(`^(?:show|list|display)\s+(?:me\s+)?(?:all\s+)?(?:my\s+)?(?:open\s+)?tasks?\b`),
		regexp.MustCompile(`what(?:'s|\s+is)?\s+on\s+my\s+(?:list|plate|agenda)`),
		regexp.MustCompile(`what\s+do\s+i\s+(?:have|need)\s+to\s+do`),
	}},
	{IntentSearchTasks, []*regexp.Regexp{
		regexp.MustCompile(`^search\s+(?:for\s+)?(.+)`),
		regexp.MustCompile(`^(?:find|look\s+for)\s+(?:tasks?\s+)?(?:about\s+)?(.+)`),
	}},
	{IntentGetAnalytics, []*regexp.Regexp{
		regexp.MustCompile(`\b(?:analytics|statistics|stats)\b`),
		regexp.MustCompile(`(?:progress|productivity)\s+report`),
		regexp.MustCompile(`how\s+(?:productive|am\s+i\s+doing)`),
	}},
	{IntentCreateTask, []*regexp.Regexp{
		regexp.MustCompile(`(?:add|create|make)\s+(?:another|an|a)?\s*(?:[\w-]+\s+){0,3}?task\s*(?:to|for|:)?\s*(.*)`),
		regexp.MustCompile(`^i\s+need\s+to\s+(.+)`),
		regexp.MustCompile(`^(?:remember|don'?t\s+forget)\s+to\s+(.+)`),
		regexp.MustCompile(`^todo:?\s+(.+)`),
		// Catch-all, must stay last
		regexp.MustCompile(`(.+?)\s+is\s+a\s+task\b`),
	}},
}

// Classifier performs ordered pattern-priority intent classification with an
// optional fallback classifier for unmatched input.
type Classifier struct {
	table    []intentPatterns
	fallback FallbackClassifier
	log      *slog.Logger
}

// NewClassifier creates a Classifier. The fallback may be nil, in which case
// unmatched input classifies as unknown.
func NewClassifier(fallback FallbackClassifier) *Classifier {
	return &Classifier{
		table:    patternTable,
		fallback: fallback,
		log:      logging.WithComponent("dialogue.classifier"),
	}
}

// Classify determines the intent of a message. Empty or whitespace-only input
// short-circuits to unknown with zero confidence before any pattern runs.
func (c *Classifier) Classify(ctx context.Context, text string) Classification {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Classification{Intent: IntentUnknown, Confidence: 0.0}
	}

	lower := strings.ToLower(trimmed)
	for _, entry := range c.table {
		for _, re := range entry.patterns {
			m := re.FindStringSubmatch(lower)
			if m == nil {
				continue
			}
			fragment := ""
			if len(m) > 1 {
				fragment = strings.TrimSpace(m[1])
			}
			return Classification{
				Intent:     entry.intent,
				Confidence: confidenceFor(entry.intent, m[0]),
				Fragment:   fragment,
			}
		}
	}

	return c.classifyFallback(ctx, lower)
}

// classifyFallback consults the coarse single-label classifier and maps its
// label through the fixed lookup table.
func (c *Classifier) classifyFallback(ctx context.Context, text string) Classification {
	label := "unknown"
	if c.fallback != nil {
		l, err := c.fallback.Label(ctx, text)
		if err != nil {
			c.log.Debug("Fallback classification failed", slog.Any("error", err))
		} else {
			label = l
		}
	}

	mapped, ok := fallbackLabels[label]
	if !ok {
		mapped = IntentUnknown
	}
	confidence := confidenceNone
	if mapped != IntentUnknown {
		confidence = confidenceFallback
	}
	return Classification{Intent: mapped, Confidence: confidence}
}

// confidenceFor assigns the rule-based confidence for a pattern match.
func confidenceFor(intent Intent, match string) float64 {
	switch intent {
	case IntentListTasks, IntentSearchTasks, IntentGetAnalytics:
		return confidenceBrowse
	}
	if len(match) > longMatchSpan {
		return confidenceStrong
	}
	return confidenceWeak
}

// Description returns a human-readable description of the intent
func (i Intent) Description() string {
	switch i {
	case IntentCreateTask:
		return "Create task"
	case IntentEditTask:
		return "Edit task"
	case IntentCompleteTask:
		return "Complete task"
	case IntentDeleteTask:
		return "Delete task"
	case IntentListTasks:
		return "List tasks"
	case IntentSearchTasks:
		return "Search tasks"
	case IntentSetReminder:
		return "Set reminder"
	case IntentGetAnalytics:
		return "Analytics"
	case IntentAddHabit:
		return "Add habit"
	case IntentCompleteHabit:
		return "Complete habit"
	case IntentAddClient:
		return "Add client"
	default:
		return "Unknown"
	}
}
