// Package nlp provides the default implementations of the dialogue engine's
// external collaborators: entity extraction, sentiment analysis, and the
// coarse fallback classifier.
package nlp

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// timeNow is overridable in tests.
var timeNow = time.Now

// Entity keys produced by the extractor.
const (
	EntityTask   = "task"
	EntityDate   = "date"
	EntityTime   = "time"
	EntityClient = "client"
)

// taskPatterns pull the task description out of common phrasings.
// Checked in order, first match wins.
var taskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:add|create|make)\s+(?:another|an|a)?\s*(?:[\w-]+\s+){0,3}?task\s*(?:to|for|:)?\s*(.+?)(?:\s+by\s+\w+)?$`),
	regexp.MustCompile(`^i\s+need\s+to\s+(.+)`),
	regexp.MustCompile(`^(?:remember|don'?t\s+forget)\s+to\s+(.+)`),
	regexp.MustCompile(`(.+?)\s+is\s+a\s+task\b`),
}

// datePatterns resolve explicit and relative dates.
var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	clockTimeRe = regexp.MustCompile(`\b(?:at\s+)?(\d{1,2}(?::\d{2})?\s*(?:am|pm)|\d{1,2}:\d{2})\b`)
	clientRe    = regexp.MustCompile(`(?:for|with)\s+client\s+([\w][\w .-]*)`)
)

// relativeDays maps phrases to day offsets from today.
var relativeDays = []struct {
	phrase string
	offset int
}{
	{"today", 0},
	{"tomorrow", 1},
	{"next week", 7},
}

// RegexExtractor is a rule-based entity extractor. It implements
// dialogue.EntityExtractor.
type RegexExtractor struct{}

// NewRegexExtractor creates a RegexExtractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Extract returns the named fields found in text. Missing fields are simply
// absent from the mapping; Extract itself never fails.
func (e *RegexExtractor) Extract(ctx context.Context, text string) (map[string]any, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	entities := make(map[string]any)

	for _, re := range taskPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			entities[EntityTask] = strings.TrimSpace(m[1])
			break
		}
	}

	if d, ok := e.extractDate(lower); ok {
		entities[EntityDate] = d
	}

	if m := clockTimeRe.FindStringSubmatch(lower); m != nil {
		entities[EntityTime] = strings.TrimSpace(m[1])
	}

	if m := clientRe.FindStringSubmatch(lower); m != nil {
		entities[EntityClient] = strings.TrimSpace(m[1])
	}

	return entities, nil
}

// extractDate tries explicit ISO dates first, then relative phrases, then
// weekday names (resolved to the next occurrence).
func (e *RegexExtractor) extractDate(lower string) (time.Time, bool) {
	if m := isoDateRe.FindStringSubmatch(lower); m != nil {
		if d, err := time.Parse("2006-01-02", m[0]); err == nil {
			return d, true
		}
	}

	now := timeNow()
	for _, rd := range relativeDays {
		if strings.Contains(lower, rd.phrase) {
			d := now.AddDate(0, 0, rd.offset)
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()), true
		}
	}

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if !strings.Contains(lower, name) {
			continue
		}
		offset := (int(wd) - int(now.Weekday()) + 7) % 7
		if offset == 0 {
			offset = 7
		}
		d := now.AddDate(0, 0, offset)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()), true
	}

	return time.Time{}, false
}
