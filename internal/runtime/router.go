package runtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
)

// classification is the JSON contract for the Idle-phase intent classifier.
type classification struct {
	Category       string `json:"category"`
	HasDestination bool   `json:"has_destination"`
	HasDates       bool   `json:"has_dates"`
	HasTravelers   bool   `json:"has_travelers"`
}

// anotherRequestMarkers signal, in the Completed phase, that the user wants
// to start a new booking flow.
var anotherRequestMarkers = []string{"another", "else", "başka", "baska", "bir daha", "yeni"}

// route decides the next handler for the current loop iteration and applies
// any phase transition the decision implies. It mutates only routing fields;
// handler-owned fields (travel context, ledger, messages) are untouched.
func (e *Engine) route(ctx context.Context, state *domain.TurnState) (string, error) {
	last, ok := domain.LastUserMessage(state.Messages)
	if !ok {
		return domain.HandlerEnd, nil
	}

	switch state.CurrentPhase {
	case domain.PhaseIdle:
		return e.routeIdle(ctx, state, last), nil

	case domain.PhaseSharpening:
		if state.PlanReady {
			state.PreviousPhase = state.CurrentPhase
			state.CurrentPhase = domain.PhaseAction
			return domain.HandlerAction, nil
		}
		if state.NeedsUserInput {
			return domain.HandlerEnd, nil
		}
		return domain.HandlerSharpener, nil

	case domain.PhaseReadyForAction:
		state.PreviousPhase = state.CurrentPhase
		state.CurrentPhase = domain.PhaseAction
		return domain.HandlerAction, nil

	case domain.PhaseAction:
		return e.routeAction(state), nil

	case domain.PhaseInfo:
		// The Info handler has answered; hand control back to whatever the
		// user was doing before the question, or close out if there was
		// nothing to resume.
		switch state.PreviousPhase {
		case domain.PhaseSharpening, domain.PhaseAction:
			state.CurrentPhase = state.PreviousPhase
		default:
			state.CurrentPhase = domain.PhaseCompleted
		}
		return domain.HandlerEnd, nil

	case domain.PhaseCompleted:
		if containsAny(strings.ToLower(last.Content), anotherRequestMarkers) {
			state.CompletedTasks = nil
			state.PreviousPhase = state.CurrentPhase
			state.CurrentPhase = domain.PhaseAction
			return domain.HandlerAction, nil
		}
		return domain.HandlerEnd, nil

	case domain.PhaseEscalation:
		return domain.HandlerEnd, nil

	default:
		e.logger.Warn("routing from unknown phase", "phase", state.CurrentPhase)
		return domain.HandlerEnd, nil
	}
}

// routeIdle classifies the first user message and picks the opening handler.
// Classification failure falls back to Sharpening.
func (e *Engine) routeIdle(ctx context.Context, state *domain.TurnState, last domain.Message) string {
	cls := e.classify(ctx, last.Content)
	state.PreviousPhase = state.CurrentPhase

	switch cls.Category {
	case string(domain.IntentReactive):
		state.IntentCategory = domain.IntentReactive
		if cls.HasDestination && cls.HasDates {
			state.PlanReady = true
			state.CurrentPhase = domain.PhaseAction
			return domain.HandlerAction
		}
		state.CurrentPhase = domain.PhaseSharpening
		return domain.HandlerSharpener

	case string(domain.IntentInfo):
		state.IntentCategory = domain.IntentInfo
		state.CurrentPhase = domain.PhaseInfo
		return domain.HandlerInfo

	default:
		state.IntentCategory = domain.IntentPlanning
		state.CurrentPhase = domain.PhaseSharpening
		return domain.HandlerSharpener
	}
}

// routeAction applies the in-order Action-phase rules.
func (e *Engine) routeAction(state *domain.TurnState) string {
	// A handler that degraded to its apology has already answered the user;
	// re-entering Action would just retry the same failing step.
	if state.NeedsUserInput {
		return domain.HandlerEnd
	}

	// (1) Results are on the table; wait for the user's pick.
	if state.CompletedTasks.Contains(domain.TaskResultsPresented) {
		return domain.HandlerEnd
	}

	latest := state.Messages[len(state.Messages)-1]

	// (2) A fresh tool result needs formatting before anything else.
	if domain.HasToolResult(domain.Tail(state.Messages, 5)) && !latest.IsAssistantText() {
		return domain.HandlerAction
	}

	// (3) The action finished and its closing text is out.
	if state.CompletedTasks.Contains(domain.TaskActionCompleted) && latest.IsAssistantText() {
		state.PreviousPhase = state.CurrentPhase
		state.CurrentPhase = domain.PhaseCompleted
		return domain.HandlerEnd
	}

	// (4) Keep working.
	return domain.HandlerAction
}

func (e *Engine) classify(ctx context.Context, userMessage string) classification {
	resp, err := e.complete(ctx, ports.CompletionRequest{
		System:     classifierPrompt(userMessage),
		StrictJSON: true,
	})
	if err != nil {
		e.logger.Warn("intent classification failed, defaulting to sharpening", "err", err)
		return classification{Category: string(domain.IntentPlanning)}
	}

	var cls classification
	if err := json.Unmarshal([]byte(resp.Content), &cls); err != nil {
		e.logger.Warn("intent classification was not valid JSON, defaulting to sharpening", "err", err)
		return classification{Category: string(domain.IntentPlanning)}
	}
	return cls
}
