package directive

// DefaultCorrelationID is used when a directive omits its correlation
// id segment.
const DefaultCorrelationID = "default"

// Message is the structured result of parsing one raw model response.
// It is produced exactly once per Parse call and never mutated after.
type Message struct {
	// Done is true when the response carried the completion sentinel.
	Done bool

	// Content is the reconstructed human-readable text: the original
	// prose with each directive line replaced by a short bracketed
	// description.
	Content string

	// ToolCalls and AgentCalls hold the recognized directives in
	// source order.
	ToolCalls  []ToolCall
	AgentCalls []AgentCall

	// Warnings records recoverable parse problems (unterminated
	// argument lists) for the caller to log.
	Warnings []string
}

// ToolCall is one TOOL: directive. RawArgs are unevaluated literal
// substrings with quotes and escapes intact; interpretation is the
// caller's job (see EvalArgs).
type ToolCall struct {
	Tool          string
	CorrelationID string
	Function      string
	RawArgs       []string
}

// AgentCall is one AGENT: directive delegating a message to another
// agent.
type AgentCall struct {
	Agent         string
	CorrelationID string
	Message       string
}
