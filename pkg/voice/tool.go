package voice

// Tool represents a function the model can invoke during conversation.
type Tool struct {
	// Name is the unique identifier for the tool (e.g., "query_knowledge_base").
	Name string `json:"name"`

	// Description explains what the tool does, helping the model decide
	// when to use it.
	Description string `json:"description"`

	// Parameters defines the JSON schema for the tool's arguments.
	// Example:
	//   map[string]any{
	//       "type": "object",
	//       "properties": map[string]any{
	//           "question": map[string]any{
	//               "type":        "string",
	//               "description": "The question to query the knowledge base with.",
	//           },
	//       },
	//   }
	Parameters map[string]any `json:"parameters"`

	// Handler is an optional fallback executed when no OnToolCall callback
	// is installed. The result is sent back to the model.
	Handler func(args map[string]any) (string, error) `json:"-"`
}

// ToolCall represents an invocation of a tool by the model.
type ToolCall struct {
	// ID is the unique identifier for this tool call.
	// Used to match results back to the correct call.
	ID string

	// Name is the tool being invoked.
	Name string

	// Arguments contains the parsed arguments from the model.
	Arguments map[string]any
}

// String returns the string value of the named argument, or "" when absent
// or not a string.
func (c ToolCall) String(name string) string {
	v, _ := c.Arguments[name].(string)
	return v
}

// ToolResult represents the result of a tool invocation.
type ToolResult struct {
	// CallID matches the ToolCall.ID this result corresponds to.
	CallID string

	// Result is the string result to send back to the model.
	Result string

	// Error is set if the tool execution failed.
	Error error
}
