package runtime

import (
	"context"

	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
)

// runInfo answers a general question, grounding the reply on retrieved
// reference material when a retriever is wired.
func (e *Engine) runInfo(ctx context.Context, state *domain.TurnState) error {
	last, ok := domain.LastUserMessage(state.Messages)
	if !ok {
		return nil
	}

	var retrieved string
	if e.retriever != nil {
		text, err := e.retriever.Search(ctx, last.Content)
		if err != nil {
			// Answer from the model alone rather than failing the turn.
			e.logger.Warn("retrieval failed", "err", err)
		} else {
			retrieved = text
		}
	}

	resp, err := e.complete(ctx, ports.CompletionRequest{
		System:   infoPrompt(retrieved, state.Language),
		Messages: domain.Tail(state.Messages, 10),
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Warn("info model call failed", "err", err)
		state.Messages = append(state.Messages, domain.NewAssistantMessage(actionApology(state.Language)))
		state.CompletedTasks = state.CompletedTasks.Append(domain.TaskInfoCompleted)
		return nil
	}

	if resp.Content != "" {
		state.Messages = append(state.Messages, domain.NewAssistantMessage(resp.Content))
	}
	state.CompletedTasks = state.CompletedTasks.Append(domain.TaskInfoCompleted)
	return nil
}
