package nlp

import (
	"context"
	"strings"
)

// Fallback labels. The dialogue engine maps these through its own lookup
// table; anything it does not recognize counts as unknown.
const (
	LabelCreateTask   = "create_task"
	LabelSetReminder  = "set_reminder"
	LabelGetAnalytics = "get_analytics"
	LabelEditTask     = "edit_task"
	LabelUnknown      = "unknown"
)

// labelRules are checked in order; the first rule with a keyword hit wins.
var labelRules = []struct {
	label    string
	keywords []string
}{
	{LabelSetReminder, []string{"remind", "reminder", "alert me"}},
	{LabelGetAnalytics, []string{"analytics", "stats", "statistics", "report", "productive"}},
	{LabelEditTask, []string{"edit", "change", "modify", "rename"}},
	{LabelCreateTask, []string{"task", "todo", "need to", "have to", "should"}},
}

// KeywordFallback is a coarse single-label classifier used when no intent
// pattern matches. It implements dialogue.FallbackClassifier.
type KeywordFallback struct{}

// NewKeywordFallback creates a KeywordFallback.
func NewKeywordFallback() *KeywordFallback {
	return &KeywordFallback{}
}

// Label returns the first matching coarse label, or "unknown".
func (f *KeywordFallback) Label(ctx context.Context, text string) (string, error) {
	lower := strings.ToLower(text)
	for _, rule := range labelRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.label, nil
			}
		}
	}
	return LabelUnknown, nil
}
