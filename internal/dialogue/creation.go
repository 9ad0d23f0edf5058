package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CreationStep identifies a state of the guided task-creation dialogue.
type CreationStep string

const (
	StepAwaitingDescription CreationStep = "awaiting_description"
	StepAwaitingDueDate     CreationStep = "awaiting_due_date"
	StepAwaitingPriority    CreationStep = "awaiting_priority"
	StepAwaitingCategory    CreationStep = "awaiting_category"
	StepAwaitingClient      CreationStep = "awaiting_client"
	StepConfirmation        CreationStep = "confirmation"
)

// StepType tags an incoming step event. Only the first field is free-form
// text; the later fields arrive as structured button callbacks.
type StepType string

const (
	StepDescription StepType = "description"
	StepDueDate     StepType = "due_date"
	StepPriority    StepType = "priority"
	StepCategory    StepType = "category"
	StepClient      StepType = "client"
	StepConfirm     StepType = "confirm"
	StepEdit        StepType = "edit"
	StepCancel      StepType = "cancel"
)

// Dialogue protocol errors, surfaced to the user by the transport.
var (
	ErrNoActiveSession = errors.New("no active task creation session")
	ErrInvalidStep     = errors.New("invalid step for current state")
)

// CreationState holds the fields collected so far in a guided dialogue.
type CreationState struct {
	Step        CreationStep
	Description string
	DueDate     string
	Priority    string
	Category    string
	Client      string
	StartedAt   time.Time
}

// expectedStep maps each collecting state to its one valid event type.
// Confirmation is handled separately since it accepts three event types.
var expectedStep = map[CreationStep]StepType{
	StepAwaitingDescription: StepDescription,
	StepAwaitingDueDate:     StepDueDate,
	StepAwaitingPriority:    StepPriority,
	StepAwaitingCategory:    StepCategory,
	StepAwaitingClient:      StepClient,
}

// StepOutcome reports the result of advancing the dialogue by one event.
type StepOutcome struct {
	State     CreationStep // state after the event; empty when the dialogue ended
	Prompt    string       // next message to show the user
	Done      bool         // the task was created
	Cancelled bool         // the dialogue was cancelled
	TaskID    string       // set when Done
}

// StartCreation opens a guided task-creation dialogue for the user. Any
// dialogue already in progress is replaced.
func (p *Processor) StartCreation(userID string) *StepOutcome {
	nc := p.store.Get(userID)
	nc.Creation = &CreationState{
		Step:      StepAwaitingDescription,
		StartedAt: timeNow(),
	}
	nc.Type = ContextTaskCreation
	p.store.Update(userID, nc)

	return &StepOutcome{
		State:  StepAwaitingDescription,
		Prompt: "📝 Let's create a task. What should it be called?",
	}
}

// HandleStep advances the guided dialogue by one validated step event.
// An event whose type does not match the current state returns ErrInvalidStep
// and leaves the state unchanged; an event with no active dialogue returns
// ErrNoActiveSession.
func (p *Processor) HandleStep(ctx context.Context, userID string, step StepType, value string) (*StepOutcome, error) {
	nc := p.store.Get(userID)
	st := nc.Creation
	if st == nil {
		return nil, ErrNoActiveSession
	}

	if st.Step == StepConfirmation {
		return p.handleConfirmation(ctx, userID, nc, step)
	}

	if expectedStep[st.Step] != step {
		return nil, fmt.Errorf("%w: got %q while %s", ErrInvalidStep, step, st.Step)
	}

	value = strings.TrimSpace(value)
	switch st.Step {
	case StepAwaitingDescription:
		st.Description = value
		st.Step = StepAwaitingDueDate
	case StepAwaitingDueDate:
		st.DueDate = value
		st.Step = StepAwaitingPriority
	case StepAwaitingPriority:
		st.Priority = value
		st.Step = StepAwaitingCategory
	case StepAwaitingCategory:
		st.Category = value
		st.Step = StepAwaitingClient
	case StepAwaitingClient:
		st.Client = value
		st.Step = StepConfirmation
	}
	p.store.Update(userID, nc)

	return &StepOutcome{State: st.Step, Prompt: p.promptFor(st)}, nil
}

// handleConfirmation resolves the terminal state: confirm creates the task,
// edit restarts the dialogue, cancel clears it.
func (p *Processor) handleConfirmation(ctx context.Context, userID string, nc *NarrativeContext, step StepType) (*StepOutcome, error) {
	st := nc.Creation

	switch step {
	case StepConfirm:
		// State is cleared whether or not creation succeeds.
		nc.Creation = nil
		nc.Type = ContextGeneral
		p.store.Update(userID, nc)

		if p.creator == nil {
			return nil, errors.New("task creation is not available")
		}
		taskID, err := p.creator.CreateTask(ctx, st.Description, st.Priority, st.Category, st.DueDate, st.Client)
		if err != nil {
			p.log.Warn("Task creation failed",
				slog.String("user_id", userID),
				slog.Any("error", err))
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
		return &StepOutcome{
			Done:   true,
			TaskID: taskID,
			Prompt: fmt.Sprintf("✅ Task created: %s", p.escape(st.Description)),
		}, nil

	case StepEdit:
		st.Step = StepAwaitingDescription
		p.store.Update(userID, nc)
		return &StepOutcome{
			State:  StepAwaitingDescription,
			Prompt: "📝 Okay, let's start over. What should the task be called?",
		}, nil

	case StepCancel:
		nc.Creation = nil
		nc.Type = ContextGeneral
		p.store.Update(userID, nc)
		return &StepOutcome{
			Cancelled: true,
			Prompt:    "❌ Task creation cancelled.",
		}, nil

	default:
		return nil, fmt.Errorf("%w: got %q while %s", ErrInvalidStep, step, StepConfirmation)
	}
}

// promptFor returns the user-facing prompt for the dialogue's current state.
func (p *Processor) promptFor(st *CreationState) string {
	switch st.Step {
	case StepAwaitingDueDate:
		return "📅 When is it due?"
	case StepAwaitingPriority:
		return "⚡ What priority should it have?"
	case StepAwaitingCategory:
		return "🗂 Which category fits best?"
	case StepAwaitingClient:
		return "👤 Is this for a client?"
	case StepConfirmation:
		return p.confirmationSummary(st)
	default:
		return "📝 What should the task be called?"
	}
}

// confirmationSummary renders the collected fields for final review.
func (p *Processor) confirmationSummary(st *CreationState) string {
	var sb strings.Builder
	sb.WriteString("📋 Here's your task:\n\n")
	sb.WriteString(fmt.Sprintf("Task: %s\n", p.escape(st.Description)))
	if st.DueDate != "" {
		sb.WriteString(fmt.Sprintf("Due: %s\n", p.escape(st.DueDate)))
	}
	if st.Priority != "" {
		sb.WriteString(fmt.Sprintf("Priority: %s\n", p.escape(st.Priority)))
	}
	if st.Category != "" {
		sb.WriteString(fmt.Sprintf("Category: %s\n", p.escape(st.Category)))
	}
	if st.Client != "" {
		sb.WriteString(fmt.Sprintf("Client: %s\n", p.escape(st.Client)))
	}
	sb.WriteString("\nCreate it?")
	return sb.String()
}
