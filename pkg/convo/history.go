package convo

import "sync"

// History accumulates the transcript of one voice session. It is fed from
// pipeline callbacks and read by the retrieval tool handler, so all access
// is goroutine safe. Snapshots are copies; an in-flight reader never sees
// later appends.
type History struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewHistory creates a transcript seeded with the fixed system instruction
// and the synthetic user turn that triggers the opening greeting.
func NewHistory(systemPrompt, greeting string) *History {
	return &History{
		turns: []Turn{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: greeting},
		},
	}
}

// Append adds a turn to the transcript.
func (h *History) Append(t Turn) {
	h.mu.Lock()
	h.turns = append(h.turns, t)
	h.mu.Unlock()
}

// AddUser records a finalized user utterance.
func (h *History) AddUser(text string) {
	h.Append(Turn{Role: RoleUser, Content: text})
}

// AddAssistant records a finalized assistant response.
func (h *History) AddAssistant(text string) {
	h.Append(Turn{Role: RoleAssistant, Content: text})
}

// AddToolCall records a function invocation requested by the model.
func (h *History) AddToolCall(tc ToolCall) {
	h.Append(Turn{Role: RoleAssistant, ToolCalls: []ToolCall{tc}})
}

// AddToolResult records the result delivered for a tool call.
func (h *History) AddToolResult(callID, content string) {
	h.Append(Turn{Role: RoleTool, Content: content, ToolCallID: callID})
}

// Turns returns a snapshot copy of the transcript, oldest first.
func (h *History) Turns() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns recorded so far.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}
