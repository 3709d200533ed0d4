package ports

import (
	"context"

	"github.com/windrose-ai/windrose/pkg/domain"
)

// CompletionRequest describes a single language-model call.
type CompletionRequest struct {
	// System is the instruction prepended to the conversation.
	System string

	// Messages is the role-tagged history passed to the model.
	Messages []domain.Message

	// Tools restricts what the model may call. Empty means no tools are bound.
	Tools []domain.Tool

	// StrictJSON asks the model to return a single JSON object.
	StrictJSON bool
}

// Completion is the model's reply: either assistant text, tool call
// requests, or both.
type Completion struct {
	Content   string
	ToolCalls []domain.ToolCall
}

// Message converts the completion into a history entry.
func (c *Completion) Message() domain.Message {
	msg := domain.NewAssistantMessage(c.Content)
	msg.ToolCalls = c.ToolCalls
	return msg
}

// LanguageModel is the single capability the core consumes from an LLM
// provider. Implementations are expected to be safe for concurrent use.
type LanguageModel interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// ModelFunc adapts a function to the LanguageModel interface.
type ModelFunc func(ctx context.Context, req CompletionRequest) (*Completion, error)

// Complete implements LanguageModel.
func (f ModelFunc) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	return f(ctx, req)
}
