package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
)

// runAction executes one step of the search/present/confirm/book flow. The
// sub-phase is re-derived from the history and ledger on every entry; nothing
// about it is stored.
func (e *Engine) runAction(ctx context.Context, state *domain.TurnState) error {
	state.ActionTurns++

	phase := DetermineActionPhase(state.Messages, state.CompletedTasks)
	e.logger.Debug("action step",
		"conversation_id", state.ConversationID,
		"action_phase", phase,
		"action_turns", state.ActionTurns,
	)

	switch phase {
	case domain.ActionSearch:
		return e.actionSearch(ctx, state)
	case domain.ActionPresent:
		return e.actionPresent(ctx, state)
	case domain.ActionConfirm:
		return e.actionConfirm(ctx, state)
	case domain.ActionBook:
		return e.actionBook(ctx, state)
	case domain.ActionComplete:
		state.Messages = append(state.Messages, domain.NewAssistantMessage(completionText(state.Travel, state.Language)))
		state.CompletedTasks = state.CompletedTasks.Append(domain.TaskActionCompleted)
		return nil
	default:
		return fmt.Errorf("unknown action phase %q", phase)
	}
}

// actionSearch asks the model to run the searches for the approved plan. A
// tool result already sitting in the recent history means a search just ran;
// re-searching would duplicate side effects, so the step only marks the
// milestone and lets the next routing pass format the results.
func (e *Engine) actionSearch(ctx context.Context, state *domain.TurnState) error {
	if domain.HasToolResult(domain.Tail(state.Messages, 5)) {
		state.CompletedTasks = state.CompletedTasks.Append(domain.TaskSearchInitiated)
		return nil
	}

	system := actionSearchPrompt(state.Travel, e.clock())
	if state.IntentCategory == domain.IntentReactive {
		system = reactivePrompt(state.CustomerID, state.Language)
	}

	resp, err := e.complete(ctx, ports.CompletionRequest{
		System:   system,
		Messages: domain.Tail(state.Messages, 10),
		Tools:    domain.SearchTools(),
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Warn("search model call failed", "err", err)
		state.Messages = append(state.Messages, domain.NewAssistantMessage(actionApology(state.Language)))
		state.NeedsUserInput = true
		return nil
	}

	state.Messages = append(state.Messages, resp.Message())
	if len(resp.ToolCalls) > 0 {
		state.CompletedTasks = state.CompletedTasks.Append(domain.TaskSearchInitiated)
		e.dispatchToolCalls(ctx, state, resp.ToolCalls)
	}
	return nil
}

// actionPresent formats raw tool output into a numbered option list. The tool
// results are spliced into the user message as context instead of being
// replayed as tool messages, so the model sees plain conversation.
func (e *Engine) actionPresent(ctx context.Context, state *domain.TurnState) error {
	recent := domain.Tail(state.Messages, 10)

	var toolTexts []string
	for _, msg := range recent {
		if msg.Role == domain.RoleTool && msg.Content != "" {
			toolTexts = append(toolTexts, msg.Content)
		}
	}

	var prompt []domain.Message
	for _, msg := range recent {
		switch msg.Role {
		case domain.RoleTool:
			continue
		case domain.RoleAssistant:
			if msg.Content == "" {
				continue
			}
			msg.ToolCalls = nil
		}
		prompt = append(prompt, msg)
	}

	if len(toolTexts) > 0 {
		spliced := "SEARCH RESULTS:\n" + strings.Join(toolTexts, "\n---\n")
		injected := false
		for i := len(prompt) - 1; i >= 0; i-- {
			if prompt[i].Role == domain.RoleUser {
				prompt[i].Content = prompt[i].Content + "\n\n" + spliced
				injected = true
				break
			}
		}
		if !injected {
			prompt = append(prompt, domain.NewUserMessage(spliced))
		}
	}

	resp, err := e.complete(ctx, ports.CompletionRequest{
		System:   actionPresentPrompt(state.Language),
		Messages: prompt,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Warn("present model call failed", "err", err)
		state.Messages = append(state.Messages, domain.NewAssistantMessage(actionApology(state.Language)))
		state.NeedsUserInput = true
		return nil
	}

	if resp.Content != "" {
		state.Messages = append(state.Messages, domain.NewAssistantMessage(resp.Content))
	}
	state.CompletedTasks = state.CompletedTasks.Append(domain.TaskResultsPresented)
	return nil
}

// actionConfirm restates the user's selection and asks for the final
// go-ahead before anything is booked.
func (e *Engine) actionConfirm(ctx context.Context, state *domain.TurnState) error {
	selection := DetectSelection(state.Messages)
	if selection == nil {
		// Routing only reaches Confirm when a selection was detected; guard
		// against the race where the history changed in between.
		selection = &Selection{Type: SelectionNumber, Value: 1}
	}

	resp, err := e.complete(ctx, ports.CompletionRequest{
		System:   actionConfirmPrompt(selection, state.Language),
		Messages: domain.Tail(state.Messages, 10),
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Warn("confirm model call failed", "err", err)
		state.Messages = append(state.Messages, domain.NewAssistantMessage(actionApology(state.Language)))
		state.NeedsUserInput = true
		return nil
	}

	if resp.Content != "" {
		state.Messages = append(state.Messages, domain.NewAssistantMessage(resp.Content))
	}
	state.CompletedTasks = state.CompletedTasks.Append(domain.TaskSelectionPresented)
	state.AwaitingConfirmation = true
	return nil
}

// actionBook executes the booking through the booking tool and closes the
// confirmation window.
func (e *Engine) actionBook(ctx context.Context, state *domain.TurnState) error {
	resp, err := e.complete(ctx, ports.CompletionRequest{
		System:   actionBookPrompt(state.Travel, state.Language),
		Messages: domain.Tail(state.Messages, 10),
		Tools:    domain.BookingTools(),
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Warn("booking model call failed", "err", err)
		state.Messages = append(state.Messages, domain.NewAssistantMessage(actionApology(state.Language)))
		state.NeedsUserInput = true
		return nil
	}

	state.Messages = append(state.Messages, resp.Message())
	if len(resp.ToolCalls) > 0 {
		e.dispatchToolCalls(ctx, state, resp.ToolCalls)
		e.recordBookingIDs(state)
	}

	state.CompletedTasks = state.CompletedTasks.Append(domain.TaskBookingCompleted)
	state.CompletedTasks = state.CompletedTasks.Append(domain.TaskActionCompleted)
	state.AwaitingConfirmation = false
	return nil
}

// recordBookingIDs scrapes booking references out of fresh tool results.
func (e *Engine) recordBookingIDs(state *domain.TurnState) {
	for _, msg := range domain.Tail(state.Messages, 4) {
		if msg.Role != domain.RoleTool || msg.IsError {
			continue
		}
		var payload struct {
			BookingID string `json:"booking_id"`
		}
		if err := json.Unmarshal([]byte(msg.Content), &payload); err != nil {
			continue
		}
		if payload.BookingID != "" {
			state.Travel.BookingIDs = append(state.Travel.BookingIDs, payload.BookingID)
		}
	}
}

func actionApology(language string) string {
	if language == "tr" {
		return "Üzgünüm, işleminizi şu anda tamamlayamadım. Lütfen biraz sonra tekrar deneyin."
	}
	return "Sorry, I couldn't complete that right now. Please try again in a moment."
}
