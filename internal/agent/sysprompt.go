package agent

import (
	"fmt"
	"strings"

	"github.com/vinayprograms/swarm/internal/tool"
)

// DirectiveProtocolGuidance teaches the model the embedded directive
// protocol. It is included in every agent's system prompt.
const DirectiveProtocolGuidance = `DIRECTIVE PROTOCOL (each directive on its own line, at the start of the line):

TOOL:<correlationId>:<tool>.<function>(arg, arg, ...)
  Invoke a tool function. Pick a short unique correlationId so you can
  match results to calls; it may be omitted. Arguments are literals
  only: quoted strings, integers, floats, or booleans.

AGENT:<correlationId>:<agentName>("message")
  Delegate a sub-task to another agent. The reply arrives later as a
  message carrying the same correlationId.

TOOL:done
  Signal that the task is complete. Nothing else is required after it.

Everything outside directive lines is treated as prose and shown to
the user. Tool results arrive as your next input, one line per call,
tagged with the correlationId and ok/error.

`

// BuildSystemPrompt assembles the system prompt for one agent from
// its identity, tools, known peers, and skill instructions.
func BuildSystemPrompt(name, bio string, tools *tool.Registry, awareOf []string, skills []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s.", name)
	if bio != "" {
		fmt.Fprintf(&sb, " %s", bio)
	}
	sb.WriteString("\n\n")
	sb.WriteString(DirectiveProtocolGuidance)

	if lines := tools.Describe(); len(lines) > 0 {
		sb.WriteString("AVAILABLE TOOL FUNCTIONS:\n")
		for _, line := range lines {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("You have no tools. Work with delegation and prose only.\n\n")
	}

	if len(awareOf) > 0 {
		sb.WriteString("AGENTS YOU CAN DELEGATE TO:\n")
		for _, peer := range awareOf {
			fmt.Fprintf(&sb, "- %s\n", peer)
		}
		sb.WriteString("\n")
	}

	for _, skill := range skills {
		sb.WriteString(strings.TrimSpace(skill))
		sb.WriteString("\n\n")
	}

	sb.WriteString("Always finish by signaling TOOL:done once the task is complete.")
	return sb.String()
}
