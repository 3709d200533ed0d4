package domain

// Handler identifiers emitted by the router.
const (
	HandlerSharpener  = "sharpener"
	HandlerAction     = "action"
	HandlerInfo       = "info"
	HandlerEscalation = "escalation"
	HandlerEnd        = "end"
)

// TurnState is the aggregate threaded through a single turn. Handlers mutate
// it field by field; the driver persists the serializable Snapshot subset at
// turn end and rehydrates it at the start of the next turn.
type TurnState struct {
	ConversationID string
	CustomerID     string

	// Messages is the ordered, role-tagged conversation history including the
	// newest user message.
	Messages []Message

	CurrentPhase  Phase
	PreviousPhase Phase

	Travel *TravelContext

	IntentCategory IntentCategory

	// NextHandler is the router's output for the current loop iteration.
	// Transient: never persisted.
	NextHandler string

	PlanReady      bool
	NeedsUserInput bool

	// Safety counters. Monotonically increasing, never decremented.
	SharpeningTurns int
	ActionTurns     int

	AwaitingConfirmation bool

	CompletedTasks TaskLedger

	// Suggestions accumulate within a turn (quick-reply buttons etc.).
	Suggestions []string

	// FailedActions lists operations that failed during this conversation,
	// feeding the escalation score.
	FailedActions []string

	Language string
}

// NewTurnState creates the empty state for a conversation's first contact.
func NewTurnState(conversationID, customerID string) *TurnState {
	return &TurnState{
		ConversationID: conversationID,
		CustomerID:     customerID,
		CurrentPhase:   PhaseIdle,
		Travel:         NewTravelContext(),
		Language:       "en",
	}
}

// AddSuggestions appends suggestions without duplicating existing entries.
func (s *TurnState) AddSuggestions(items ...string) {
	for _, item := range items {
		dup := false
		for _, existing := range s.Suggestions {
			if existing == item {
				dup = true
				break
			}
		}
		if !dup {
			s.Suggestions = append(s.Suggestions, item)
		}
	}
}

// Snapshot is the serializable subset of TurnState persisted between turns.
// Message history is owned by the surrounding application (it typically lives
// in a durable message log), so it is deliberately not part of the snapshot.
type Snapshot struct {
	TravelContext   *TravelContext `json:"travel_context"`
	CurrentPhase    Phase          `json:"current_phase"`
	PlanReady       bool           `json:"plan_ready"`
	SharpeningTurns int            `json:"sharpening_turns"`
	ActionTurns     int            `json:"action_turns"`
	IntentCategory  IntentCategory `json:"intent_category,omitempty"`
	CompletedTasks  TaskLedger     `json:"completed_tasks"`
	Language        string         `json:"language"`
}

// Snapshot extracts the persistable subset of the state.
func (s *TurnState) Snapshot() *Snapshot {
	return &Snapshot{
		TravelContext:   s.Travel,
		CurrentPhase:    s.CurrentPhase,
		PlanReady:       s.PlanReady,
		SharpeningTurns: s.SharpeningTurns,
		ActionTurns:     s.ActionTurns,
		IntentCategory:  s.IntentCategory,
		CompletedTasks:  s.CompletedTasks.Clone(),
		Language:        s.Language,
	}
}

// Restore rehydrates a TurnState from a persisted snapshot. A nil snapshot
// yields the empty first-contact state.
func Restore(conversationID, customerID string, snap *Snapshot) *TurnState {
	state := NewTurnState(conversationID, customerID)
	if snap == nil {
		return state
	}
	if snap.TravelContext != nil {
		state.Travel = snap.TravelContext
	}
	if snap.CurrentPhase != "" {
		state.CurrentPhase = snap.CurrentPhase
	}
	state.PlanReady = snap.PlanReady
	state.SharpeningTurns = snap.SharpeningTurns
	state.ActionTurns = snap.ActionTurns
	state.IntentCategory = snap.IntentCategory
	state.CompletedTasks = snap.CompletedTasks.Clone()
	if snap.Language != "" {
		state.Language = snap.Language
	}
	return state
}
