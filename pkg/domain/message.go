package domain

import "github.com/google/uuid"

// Role tags a message with its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in the conversation history. The Role field acts as the
// union tag: user and assistant messages carry Content, assistant messages may
// additionally carry ToolCalls, and tool messages carry the result of a single
// dispatched call identified by ToolCallID.
type Message struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	IsError    bool       `json:"is_error,omitempty"`
}

// NewUserMessage creates a user message with a fresh ID.
func NewUserMessage(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant text message with a fresh ID.
func NewAssistantMessage(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Content: content}
}

// NewToolResultMessage creates a tool-result message bound to the originating call.
func NewToolResultMessage(callID, content string, isError bool) Message {
	return Message{ID: uuid.NewString(), Role: RoleTool, Content: content, ToolCallID: callID, IsError: isError}
}

// HasToolCalls reports whether the message requests tool execution.
func (m Message) HasToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// IsAssistantText reports whether the message is assistant content without a
// pending tool call. The router uses this to distinguish "formatted answer"
// from "tool request in flight".
func (m Message) IsAssistantText() bool {
	return m.Role == RoleAssistant && m.Content != "" && len(m.ToolCalls) == 0
}

// LastUserMessage returns the most recent user message, scanning backwards.
func LastUserMessage(msgs []Message) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return msgs[i], true
		}
	}
	return Message{}, false
}

// LastAssistantText returns the content of the most recent assistant message
// that carries text, scanning backwards.
func LastAssistantText(msgs []Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsAssistantText() {
			return msgs[i].Content, true
		}
	}
	return "", false
}

// Tail returns the last n messages (or all of them when fewer exist).
func Tail(msgs []Message, n int) []Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// HasToolResult reports whether any of the given messages is a tool result.
func HasToolResult(msgs []Message) bool {
	for _, m := range msgs {
		if m.Role == RoleTool {
			return true
		}
	}
	return false
}

// CountUserMessages counts user-authored messages in the history.
func CountUserMessages(msgs []Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}
