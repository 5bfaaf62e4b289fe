// Package prompt defines the payload types that travel through the
// scheduler queue between agents and back into a model binding.
package prompt

import (
	"fmt"
	"strings"
)

// Payload is the content of one queued prompt: either plain text or a
// batch of tool-execution results being returned to the model.
type Payload interface {
	// Render produces the text actually sent to the model.
	Render() string
}

// Text is a plain prompt string.
type Text string

func (t Text) Render() string {
	return string(t)
}

// ToolResult is the outcome of one tool call, keyed by the correlation
// id the model chose when it issued the call.
type ToolResult struct {
	CorrelationID string
	Success       bool
	Content       string
}

// ToolResultBatch carries every result of one turn's tool calls back
// to the model as a single follow-up input.
type ToolResultBatch struct {
	Results []ToolResult
}

func (b ToolResultBatch) Render() string {
	var sb strings.Builder
	sb.WriteString("Tool results:\n")
	for _, r := range b.Results {
		status := "ok"
		if !r.Success {
			status = "error"
		}
		fmt.Fprintf(&sb, "[%s] %s: %s\n", r.CorrelationID, status, r.Content)
	}
	sb.WriteString("\nContinue with the task. Signal completion with TOOL:done when finished.")
	return sb.String()
}
