package model

// Message is the unified transcript entry produced by the mapper engine,
// regardless of which agent wrote the session log. Content is always
// present (possibly empty); the slice fields are omitted when empty.
type Message struct {
	Role      string          `json:"role"` // "human" or "assistant"
	Content   string          `json:"content"`
	Timestamp string          `json:"timestamp,omitempty"`
	Model     string          `json:"model,omitempty"`
	ToolCalls []ToolCall      `json:"tool_calls,omitempty"`
	Thinking  []ThinkingBlock `json:"thinking,omitempty"`
}

// ToolCall is one tool invocation requested by the assistant. Input holds
// the pretty-printed arguments. Output starts empty and is filled in when
// the matching result appears later in the log; it keeps the ErrorPrefix
// when the result was flagged as an error.
type ToolCall struct {
	Name   string `json:"name"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ThinkingBlock is one reasoning block emitted by the assistant.
type ThinkingBlock struct {
	Text string `json:"text"`
}

// ErrorPrefix marks a tool output whose result was flagged as an error.
const ErrorPrefix = "[error] "

// RoleHuman and RoleAssistant are the only roles a Message carries.
const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)
