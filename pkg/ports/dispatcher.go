package ports

import (
	"context"

	"github.com/windrose-ai/windrose/pkg/domain"
)

// ToolDispatcher executes side-effects requested by the engine (searches,
// bookings). A failed call is reported through ToolResult.IsError rather than
// the error return, so the conversation can degrade instead of aborting; the
// error return is reserved for transport-level failures the caller cannot
// fold back into the history.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error)
}

// DispatcherFunc adapts a function to the ToolDispatcher interface.
type DispatcherFunc func(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error)

// Dispatch implements ToolDispatcher.
func (f DispatcherFunc) Dispatch(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	return f(ctx, call)
}
