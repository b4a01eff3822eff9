// Package convo models the conversation transcript of a voice session and
// derives the trailing context used for constrained generation prompts.
package convo

// Role identifies who produced a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall records a function invocation requested by the model.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Turn is one unit of conversation history. A single turn may bundle an
// assistant message together with a tool call, so it expands into zero or
// more primitive messages via Messages.
type Turn struct {
	Role    Role
	Content string

	// ToolCalls is set when the model requested one or more functions
	// as part of this turn.
	ToolCalls []ToolCall

	// ToolCallID links a tool-result turn back to the call it answers.
	ToolCallID string
}

// Message is a primitive role and content pair, the unit the reducer
// filters and serializes.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// IsToolCall reports whether the message is a tool result or carries a
// tool-call payload. These are excluded from generation context.
func (m Message) IsToolCall() bool {
	return m.Role == RoleTool || len(m.ToolCalls) > 0
}

// Messages expands the turn into primitive messages, in order. A turn with
// neither content nor tool calls expands to nothing.
func (t Turn) Messages() []Message {
	var msgs []Message
	if t.Content != "" {
		msgs = append(msgs, Message{Role: t.Role, Content: t.Content})
	}
	if len(t.ToolCalls) > 0 {
		msgs = append(msgs, Message{Role: RoleAssistant, ToolCalls: t.ToolCalls})
	}
	return msgs
}
