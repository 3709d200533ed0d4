package domain

// Phase is the top-level conversation state.
type Phase string

const (
	PhaseIdle           Phase = "idle"       // First contact, no intent classified yet
	PhaseSharpening     Phase = "sharpening" // Collecting travel info (Sharpener owns this)
	PhaseReadyForAction Phase = "ready"      // Plan complete, ready for Action
	PhaseAction         Phase = "action"     // Executing searches/bookings
	PhaseInfo           Phase = "info"       // Answering policy questions
	PhaseEscalation     Phase = "escalation" // Human handoff
	PhaseCompleted      Phase = "completed"  // Task done
)

// ActionPhase is the sub-state valid only while Phase == PhaseAction.
type ActionPhase string

const (
	ActionSearch   ActionPhase = "search"
	ActionPresent  ActionPhase = "present"
	ActionConfirm  ActionPhase = "confirm"
	ActionBook     ActionPhase = "book"
	ActionComplete ActionPhase = "complete"
)

// IntentCategory is the initial classification of the user's first message.
type IntentCategory string

const (
	IntentPlanning IntentCategory = "planning" // Wants a trip but lacks key details
	IntentReactive IntentCategory = "reactive" // Has enough info to search immediately
	IntentInfo     IntentCategory = "info"     // Factual question (policies, general info)
)
