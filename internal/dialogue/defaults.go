package dialogue

import (
	"strings"
	"time"
)

// Priority is a suggested task priority.
type Priority string

const (
	PriorityUrgent Priority = "Urgent"
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Entity keys produced by the smart defaults engine. Extractor-provided keys
// are never overwritten by these.
const (
	entityDate              = "date"
	EntitySuggestedPriority = "suggested_priority"
	EntitySuggestedCategory = "suggested_category"
	EntitySuggestedDate     = "suggested_date"
)

// timeNow is overridable in tests.
var timeNow = time.Now

// priorityGroups are scanned in order; the first group with any keyword match
// wins, so "urgent" beats "low" when both appear.
var priorityGroups = []struct {
	priority Priority
	keywords []string
}{
	{PriorityUrgent, []string{"urgent", "asap", "critical", "emergency", "immediately", "right away"}},
	{PriorityHigh, []string{"important", "high priority", "priority", "soon", "quickly"}},
	{PriorityMedium, []string{"medium", "normal", "regular", "standard"}},
	{PriorityLow, []string{"low", "later", "whenever", "someday", "eventually", "no rush"}},
}

// categoryGroups are scanned in fixed order; first match wins.
var categoryGroups = []struct {
	category string
	keywords []string
}{
	{"Work", []string{"work", "meeting", "project", "office", "deadline", "presentation", "report", "email"}},
	{"Personal", []string{"personal", "home", "family", "friend", "shopping", "errand", "birthday"}},
	{"Health", []string{"health", "doctor", "dentist", "gym", "exercise", "workout", "medication"}},
	{"Learning", []string{"learn", "study", "course", "read", "book", "tutorial", "practice"}},
	{"Finance", []string{"finance", "pay", "bill", "invoice", "budget", "bank", "tax"}},
}

// relativeDates are checked in order against the lower-cased text. Offsets are
// whole days from the current date.
var relativeDates = []struct {
	phrase string
	offset int
}{
	{"today", 0},
	{"tomorrow", 1},
	{"next week", 7},
	{"this week", 3},
	{"next month", 30},
}

// SuggestPriority scans text for priority keywords. Groups are ordered from
// urgent to low and the earliest matching group wins. Defaults to Medium.
func SuggestPriority(text string) Priority {
	lower := strings.ToLower(text)
	for _, group := range priorityGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.priority
			}
		}
	}
	return PriorityMedium
}

// SuggestCategory scans text for category keywords and returns the first
// matching category name, or "" when nothing matches.
func SuggestCategory(text string) string {
	lower := strings.ToLower(text)
	for _, group := range categoryGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.category
			}
		}
	}
	return ""
}

// SuggestDueDate returns a due date for the text. A date entity provided by
// the extractor passes through unchanged. Otherwise relative phrases
// ("today", "tomorrow", ...) resolve to day offsets from the current date.
// The second return value reports whether a date was found.
func SuggestDueDate(text string, entities map[string]any) (time.Time, bool) {
	if entities != nil {
		if d, ok := entities[entityDate].(time.Time); ok {
			return d, true
		}
	}

	lower := strings.ToLower(text)
	for _, rd := range relativeDates {
		if strings.Contains(lower, rd.phrase) {
			return dateOnly(timeNow().AddDate(0, 0, rd.offset)), true
		}
	}
	return time.Time{}, false
}

// Enrich merges smart-default suggestions into a copy of the entity mapping.
// Extractor-provided keys are never clobbered, with one exception: when a
// date entity is present, a normalized date-only copy is always exposed as
// suggested_date for display.
func Enrich(text string, entities map[string]any) map[string]any {
	out := make(map[string]any, len(entities)+3)
	for k, v := range entities {
		out[k] = v
	}

	if _, exists := out[EntitySuggestedPriority]; !exists {
		out[EntitySuggestedPriority] = string(SuggestPriority(text))
	}
	if _, exists := out[EntitySuggestedCategory]; !exists {
		if category := SuggestCategory(text); category != "" {
			out[EntitySuggestedCategory] = category
		}
	}

	if d, ok := out[entityDate].(time.Time); ok {
		out[EntitySuggestedDate] = dateOnly(d)
	} else if d, ok := SuggestDueDate(text, out); ok {
		if _, exists := out[EntitySuggestedDate]; !exists {
			out[EntitySuggestedDate] = d
		}
	}

	return out
}

// dateOnly strips the time-of-day component.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
