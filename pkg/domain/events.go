package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventHandlerEnter EventType = "handler_enter"
	EventHandlerLeave EventType = "handler_leave"
	EventToolCall     EventType = "tool_call"
	EventToolReturn   EventType = "tool_return"
	EventEscalation   EventType = "escalation"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp      time.Time `json:"timestamp"`
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id"`
}

// HandlerEvent represents entry into or exit from a handler during the driver loop.
type HandlerEvent struct {
	EventBase
	Handler string `json:"handler"`
	Phase   Phase  `json:"phase"`
}

// ToolEvent represents a tool dispatch.
type ToolEvent struct {
	EventBase
	ToolName string        `json:"tool_name"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
}

// EscalationEvent fires when a conversation is handed off to a human.
type EscalationEvent struct {
	EventBase
	Score   int    `json:"score"`
	Urgency string `json:"urgency"`
	Reason  string `json:"reason"`
}

// LifecycleHooks defines callbacks for engine observability. Any hook may be nil.
type LifecycleHooks struct {
	OnHandlerEnter func(context.Context, *HandlerEvent)
	OnHandlerLeave func(context.Context, *HandlerEvent)
	OnToolCall     func(context.Context, *ToolEvent)
	OnToolReturn   func(context.Context, *ToolEvent)
	OnEscalation   func(context.Context, *EscalationEvent)
}
