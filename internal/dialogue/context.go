package dialogue

import (
	"sync"
	"time"
)

// ContextType tags the kind of conversation a user is currently in.
type ContextType string

const (
	ContextTaskCreation     ContextType = "task-creation"
	ContextTaskEditing      ContextType = "task-editing"
	ContextTaskSelection    ContextType = "task-selection"
	ContextHabitTracking    ContextType = "habit-tracking"
	ContextClientManagement ContextType = "client-management"
	ContextAnalyticsViewing ContextType = "analytics-viewing"
	ContextGeneral          ContextType = "general"
)

// History bounds. The store keeps up to storeHistoryLimit interactions per
// user; the most recent contextHistoryLimit are mirrored into the context for
// response generation.
const (
	storeHistoryLimit   = 20
	contextHistoryLimit = 10
)

// Interaction is one processed message in a user's history.
type Interaction struct {
	Timestamp  time.Time
	Input      string
	Intent     Intent
	Confidence float64
}

// NarrativeContext is the per-user conversational state. One instance exists
// per user ID, created lazily on first interaction and mutated in place by
// the Processor. Creation is non-nil only while a guided task-creation
// dialogue is active.
type NarrativeContext struct {
	CurrentIntent     Intent
	Type              ContextType
	Entities          map[string]any
	Sentiment         string
	Confidence        float64
	SuggestedActions  []string
	FollowUpQuestions []string
	UserHistory       []Interaction
	Creation          *CreationState
}

// newNarrativeContext returns a context with default values for an unseen user.
func newNarrativeContext() *NarrativeContext {
	return &NarrativeContext{
		CurrentIntent: IntentUnknown,
		Type:          ContextGeneral,
		Entities:      make(map[string]any),
		Sentiment:     SentimentNeutral,
	}
}

// ContextStore owns all NarrativeContext instances, keyed by user ID.
// State lives for the process lifetime only; there is no persistence.
type ContextStore struct {
	mu       sync.Mutex
	contexts map[string]*NarrativeContext
	history  map[string][]Interaction
}

// NewContextStore creates an empty context store.
func NewContextStore() *ContextStore {
	return &ContextStore{
		contexts: make(map[string]*NarrativeContext),
		history:  make(map[string][]Interaction),
	}
}

// Get returns the context for a user, creating a default-valued one on first
// access.
func (s *ContextStore) Get(userID string) *NarrativeContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	nc, ok := s.contexts[userID]
	if !ok {
		nc = newNarrativeContext()
		s.contexts[userID] = nc
	}
	return nc
}

// Update stores the context for a user.
func (s *ContextStore) Update(userID string, nc *NarrativeContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[userID] = nc
}

// AddToHistory appends an interaction to the user's history, dropping the
// oldest entries beyond the store bound, then mirrors the most recent entries
// back into the stored context's UserHistory.
func (s *ContextStore) AddToHistory(userID string, interaction Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.history[userID], interaction)
	if len(entries) > storeHistoryLimit {
		entries = entries[len(entries)-storeHistoryLimit:]
	}
	s.history[userID] = entries

	nc, ok := s.contexts[userID]
	if !ok {
		nc = newNarrativeContext()
		s.contexts[userID] = nc
	}
	mirror := entries
	if len(mirror) > contextHistoryLimit {
		mirror = mirror[len(mirror)-contextHistoryLimit:]
	}
	nc.UserHistory = make([]Interaction, len(mirror))
	copy(nc.UserHistory, mirror)
}

// History returns a copy of the user's full stored history.
func (s *ContextStore) History(userID string) []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.history[userID]
	out := make([]Interaction, len(entries))
	copy(out, entries)
	return out
}
