package dialogue

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taskmindbot/taskmind/internal/logging"
)

// emptyInputMessage is the fixed reply for empty or whitespace-only input.
const emptyInputMessage = "🤷 I didn't receive any text. Tell me what you'd like to do, or try /help."

// historyInputLimit caps how much of the raw input is kept per interaction.
const historyInputLimit = 200

// ProcessedInput is the immutable result of processing one message.
type ProcessedInput struct {
	Intent           Intent
	Entities         map[string]any
	Confidence       float64
	SuggestedCommand string
	SuggestedParams  map[string]string
	Context          *NarrativeContext
	Response         string
}

// Config holds the collaborators for creating a Processor.
type Config struct {
	Classifier *Classifier
	Extractor  EntityExtractor
	Sentiment  SentimentAnalyzer
	Store      *ContextStore
	Creator    TaskCreator
	// Escape sanitizes user text for the transport's markup dialect.
	Escape func(string) string
	Log    *slog.Logger
}

// Processor is the engine's single entry point: it runs the
// classify → extract → enrich → respond → update pipeline for one message and
// drives the guided task-creation dialogue.
type Processor struct {
	classifier *Classifier
	extractor  EntityExtractor
	sentiment  SentimentAnalyzer
	store      *ContextStore
	creator    TaskCreator
	responses  *ResponseGenerator
	escape     func(string) string
	log        *slog.Logger
}

// NewProcessor creates a Processor from the given config. Nil collaborators
// degrade gracefully: extraction yields empty entities, sentiment yields
// neutral, and escaping is the identity.
func NewProcessor(cfg *Config) *Processor {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	store := cfg.Store
	if store == nil {
		store = NewContextStore()
	}
	escape := cfg.Escape
	if escape == nil {
		escape = func(s string) string { return s }
	}
	lg := cfg.Log
	if lg == nil {
		lg = logging.WithComponent("dialogue.processor")
	}

	return &Processor{
		classifier: classifier,
		extractor:  cfg.Extractor,
		sentiment:  cfg.Sentiment,
		store:      store,
		creator:    cfg.Creator,
		responses:  NewResponseGenerator(escape),
		escape:     escape,
		log:        lg,
	}
}

// Store exposes the context store for transports that need direct access
// (e.g. clearing a dialogue from a /cancel command).
func (p *Processor) Store() *ContextStore {
	return p.store
}

// Process runs the full pipeline for one message. An empty userID selects the
// stateless path: a fresh default context is produced and never persisted.
// Process never returns an error; collaborator failures degrade to defaults.
func (p *Processor) Process(ctx context.Context, text, userID string) *ProcessedInput {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &ProcessedInput{
			Intent:     IntentUnknown,
			Entities:   map[string]any{},
			Confidence: 0.0,
			Context:    newNarrativeContext(),
			Response:   emptyInputMessage,
		}
	}

	var nc *NarrativeContext
	if userID != "" {
		nc = p.store.Get(userID)

		// An active guided dialogue consumes free text only while it waits
		// for the description; every later field arrives as a button event.
		if nc.Creation != nil && nc.Creation.Step == StepAwaitingDescription {
			return p.advanceDescription(ctx, trimmed, userID, nc)
		}
	}

	cls := p.classifier.Classify(ctx, trimmed)
	entities := p.extractEntities(ctx, trimmed)
	sentiment := p.analyzeSentiment(ctx, trimmed)
	enriched := Enrich(trimmed, entities)
	command, params := suggestCommand(cls, enriched)
	response := p.responses.Generate(cls, enriched, params)

	if userID != "" {
		nc.CurrentIntent = cls.Intent
		nc.Confidence = cls.Confidence
		nc.Sentiment = sentiment
		nc.Entities = enriched
		if nc.Creation == nil {
			nc.Type = contextTypeFor(cls.Intent)
		}
		fillSuggestions(nc, cls.Intent)
		p.store.AddToHistory(userID, Interaction{
			Timestamp:  time.Now(),
			Input:      truncate(trimmed, historyInputLimit),
			Intent:     cls.Intent,
			Confidence: cls.Confidence,
		})
		p.store.Update(userID, nc)
	} else {
		nc = newNarrativeContext()
		nc.CurrentIntent = cls.Intent
		nc.Confidence = cls.Confidence
		nc.Sentiment = sentiment
		nc.Entities = enriched
		nc.Type = contextTypeFor(cls.Intent)
	}

	return &ProcessedInput{
		Intent:           cls.Intent,
		Entities:         enriched,
		Confidence:       cls.Confidence,
		SuggestedCommand: command,
		SuggestedParams:  params,
		Context:          nc,
		Response:         response,
	}
}

// advanceDescription feeds free text into the dialogue's description step.
func (p *Processor) advanceDescription(ctx context.Context, text, userID string, nc *NarrativeContext) *ProcessedInput {
	outcome, err := p.HandleStep(ctx, userID, StepDescription, text)
	response := ""
	if err != nil {
		// Cannot happen while the state machine waits for a description,
		// but degrade to the generic reply rather than dropping the message.
		p.log.Warn("Description step rejected", slog.Any("error", err))
		response = emptyInputMessage
	} else {
		response = outcome.Prompt
	}

	return &ProcessedInput{
		Intent:     IntentCreateTask,
		Entities:   map[string]any{"task": text},
		Confidence: 1.0,
		Context:    nc,
		Response:   response,
	}
}

// extractEntities calls the extractor behind a fail-soft boundary.
func (p *Processor) extractEntities(ctx context.Context, text string) map[string]any {
	if p.extractor == nil {
		return map[string]any{}
	}
	entities, err := p.extractor.Extract(ctx, text)
	if err != nil {
		p.log.Warn("Entity extraction failed", slog.Any("error", err))
		return map[string]any{}
	}
	if entities == nil {
		return map[string]any{}
	}
	return entities
}

// analyzeSentiment calls the analyzer behind a fail-soft boundary.
func (p *Processor) analyzeSentiment(ctx context.Context, text string) string {
	if p.sentiment == nil {
		return SentimentNeutral
	}
	label, err := p.sentiment.Analyze(ctx, text)
	if err != nil {
		p.log.Warn("Sentiment analysis failed", slog.Any("error", err))
		return SentimentNeutral
	}
	if label == "" {
		return SentimentNeutral
	}
	return label
}

// suggestCommand maps an intent to a bot command with parameters.
func suggestCommand(cls Classification, entities map[string]any) (string, map[string]string) {
	description := cls.Fragment
	if t, ok := entities["task"].(string); ok && t != "" {
		description = t
	}

	switch cls.Intent {
	case IntentCreateTask:
		params := map[string]string{"description": description}
		if p, ok := entities[EntitySuggestedPriority].(string); ok {
			params["priority"] = p
		}
		if c, ok := entities[EntitySuggestedCategory].(string); ok {
			params["category"] = c
		}
		if d, ok := entities[EntitySuggestedDate].(time.Time); ok {
			params["due_date"] = d.Format("2006-01-02")
		}
		return "/add", params
	case IntentCompleteTask:
		return "/done", map[string]string{"description": description}
	case IntentEditTask:
		return "/edit", map[string]string{}
	case IntentDeleteTask:
		// Deletion reuses /done; there is no dedicated delete command.
		return "/done", map[string]string{"description": description}
	case IntentListTasks:
		return "/list", map[string]string{}
	case IntentSearchTasks:
		return "/search", map[string]string{"query": cls.Fragment}
	case IntentAddHabit:
		return "/habit_add", map[string]string{"name": cls.Fragment}
	case IntentCompleteHabit:
		return "/habit_done", map[string]string{"name": cls.Fragment}
	default:
		return "", nil
	}
}

// contextTypeFor maps an intent to the conversation type it opens.
func contextTypeFor(intent Intent) ContextType {
	switch intent {
	case IntentCreateTask:
		return ContextTaskCreation
	case IntentEditTask:
		return ContextTaskEditing
	case IntentCompleteTask, IntentDeleteTask, IntentListTasks, IntentSearchTasks:
		return ContextTaskSelection
	case IntentAddHabit, IntentCompleteHabit:
		return ContextHabitTracking
	case IntentAddClient:
		return ContextClientManagement
	case IntentGetAnalytics:
		return ContextAnalyticsViewing
	default:
		return ContextGeneral
	}
}

// fillSuggestions sets per-intent suggested actions and follow-up questions.
func fillSuggestions(nc *NarrativeContext, intent Intent) {
	switch intent {
	case IntentCreateTask:
		nc.SuggestedActions = []string{"/add", "/list"}
		nc.FollowUpQuestions = []string{"Would you like a reminder for it?"}
	case IntentCompleteTask:
		nc.SuggestedActions = []string{"/done", "/list"}
		nc.FollowUpQuestions = []string{"Want to see what's left?"}
	case IntentListTasks, IntentSearchTasks:
		nc.SuggestedActions = []string{"/list", "/search"}
		nc.FollowUpQuestions = nil
	case IntentGetAnalytics:
		nc.SuggestedActions = []string{"/analytics"}
		nc.FollowUpQuestions = nil
	case IntentAddHabit, IntentCompleteHabit:
		nc.SuggestedActions = []string{"/habit_add", "/habit_done"}
		nc.FollowUpQuestions = nil
	default:
		nc.SuggestedActions = nil
		nc.FollowUpQuestions = nil
	}
}

// truncate shortens s to at most maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
