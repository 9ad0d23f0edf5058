package nlp

import (
	"context"
	"strings"
)

// Sentiment labels. These match what the dialogue engine expects.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

var positiveWords = []string{
	"great", "good", "awesome", "excellent", "nice", "love", "happy",
	"thanks", "thank you", "perfect", "wonderful", "excited",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "hate", "angry", "frustrated", "annoying",
	"stressed", "overwhelmed", "worried", "ugh", "broken",
}

// LexiconAnalyzer is a word-list sentiment analyzer. It implements
// dialogue.SentimentAnalyzer.
type LexiconAnalyzer struct{}

// NewLexiconAnalyzer creates a LexiconAnalyzer.
func NewLexiconAnalyzer() *LexiconAnalyzer {
	return &LexiconAnalyzer{}
}

// Analyze labels text by counting positive and negative lexicon hits.
// Ties and empty input are neutral; Analyze itself never fails.
func (a *LexiconAnalyzer) Analyze(ctx context.Context, text string) (string, error) {
	lower := strings.ToLower(text)

	positive := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	negative := 0
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return SentimentPositive, nil
	case negative > positive:
		return SentimentNegative, nil
	default:
		return SentimentNeutral, nil
	}
}
