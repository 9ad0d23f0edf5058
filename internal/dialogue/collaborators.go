package dialogue

import "context"

// Sentiment labels produced by the sentiment analyzer.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// EntityExtractor pulls named fields (task, date, client, ...) out of raw
// text. Implementations live outside the engine; failures degrade to an
// empty mapping.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) (map[string]any, error)
}

// SentimentAnalyzer labels raw text with a coarse sentiment. Failures degrade
// to neutral.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (string, error)
}

// TaskCreator persists a task. It is invoked only when the user confirms the
// guided task-creation dialogue; failures surface to the caller and are not
// retried.
type TaskCreator interface {
	CreateTask(ctx context.Context, description, priority, category, dueDate, client string) (taskID string, err error)
}
