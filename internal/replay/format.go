package replay

import (
	"fmt"
	"strings"

	"github.com/vinayprograms/swarm/internal/session"
)

// formatEvent formats a single event for display.
func (r *Replayer) formatEvent(event *session.Event) {
	ts := timeStyle.Render(event.Timestamp.Format("15:04:05"))
	seqNum := seqStyle.Render(fmt.Sprintf("%d", event.SeqID))

	switch event.Type {
	case session.EventSystem:
		r.fmtSystem(seqNum, ts, event)
	case session.EventUser:
		r.fmtUser(seqNum, ts, event)
	case session.EventAssistant:
		r.fmtAssistant(seqNum, ts, event)
	case session.EventToolCall:
		r.fmtToolCall(seqNum, ts, event)
	case session.EventToolResult:
		r.fmtToolResult(seqNum, ts, event)
	case session.EventDelegation:
		r.fmtDelegation(seqNum, ts, event)
	case session.EventDispatch:
		r.fmtDispatch(seqNum, ts, event)
	case session.EventTurnEnd:
		r.fmtTurnEnd(seqNum, ts, event)
	case session.EventNudge:
		r.fmtNudge(seqNum, ts, event)
	case session.EventDone:
		r.fmtDone(seqNum, ts, event)
	default:
		fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, ts, dimStyle.Render(event.Type))
	}
}

func (r *Replayer) fmtSystem(seqNum, ts string, event *session.Event) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, ts,
		dimStyle.Render("SYSTEM"), r.agentTag(event))
	if r.verbosity >= 2 && event.Content != "" {
		r.printContent(event.Content)
	}
}

func (r *Replayer) fmtUser(seqNum, ts string, event *session.Event) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, ts,
		flowStyle.Render("PROMPT"), r.agentTag(event))
	if r.verbosity >= 1 && event.Content != "" {
		r.printContent(event.Content)
	}
}

func (r *Replayer) fmtAssistant(seqNum, ts string, event *session.Event) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, ts,
		flowStyle.Render("RESPONSE"), r.agentTag(event))
	if r.verbosity >= 1 && event.Content != "" {
		r.printContent(event.Content)
	}
}

func (r *Replayer) fmtToolCall(seqNum, ts string, event *session.Event) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s %s\n", seqNum, ts,
		toolStyle.Render("TOOL:"),
		valueStyle.Render(fmt.Sprintf("%s.%s", event.Tool, event.Function)),
		dimStyle.Render(fmt.Sprintf("[%s]", event.CorrelationID)))
}

func (r *Replayer) fmtToolResult(seqNum, ts string, event *session.Event) {
	status := successStyle.Render("ok")
	if event.Success != nil && !*event.Success {
		status = errorStyle.Render("error")
	}
	fmt.Fprintf(r.output, "%s │ %s │ %s %s %s %s\n", seqNum, ts,
		toolStyle.Render("RESULT:"),
		dimStyle.Render(fmt.Sprintf("[%s]", event.CorrelationID)),
		status,
		dimStyle.Render(fmt.Sprintf("(%dms)", event.DurationMs)))
	if event.Error != "" {
		fmt.Fprintf(r.output, "      │          │   %s\n", errorStyle.Render(event.Error))
	} else if r.verbosity >= 1 && event.Content != "" {
		r.printContent(event.Content)
	}
}

func (r *Replayer) fmtDelegation(seqNum, ts string, event *session.Event) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s %s\n", seqNum, ts,
		delegationStyle.Render("DELEGATE:"),
		valueStyle.Render(fmt.Sprintf("%s → %s", event.Agent, event.Target)),
		dimStyle.Render(fmt.Sprintf("[%s]", event.CorrelationID)))
	if r.verbosity >= 1 && event.Content != "" {
		r.printContent(event.Content)
	}
}

func (r *Replayer) fmtDispatch(seqNum, ts string, event *session.Event) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, ts,
		schedulerStyle.Render("DISPATCH"), r.agentTag(event))
}

func (r *Replayer) fmtTurnEnd(seqNum, ts string, event *session.Event) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s %s\n", seqNum, ts,
		schedulerStyle.Render("TURN END"), r.agentTag(event),
		dimStyle.Render(fmt.Sprintf("(%dms)", event.DurationMs)))
}

func (r *Replayer) fmtNudge(seqNum, ts string, event *session.Event) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, ts,
		warnStyle.Render("NUDGE"), r.agentTag(event))
}

func (r *Replayer) fmtDone(seqNum, ts string, event *session.Event) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, ts,
		successStyle.Render("DONE"), r.agentTag(event))
}

func (r *Replayer) agentTag(event *session.Event) string {
	if event.Agent == "" {
		return ""
	}
	return dimStyle.Render(fmt.Sprintf("[%s]", event.Agent))
}

// printContent prints indented, truncated event content.
func (r *Replayer) printContent(content string) {
	content = r.truncate(content)
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(r.output, "      │          │   %s\n", dimStyle.Render(line))
	}
}

func (r *Replayer) truncate(content string) string {
	if r.maxContentSize > 0 && len(content) > r.maxContentSize {
		return content[:r.maxContentSize] + "... [truncated]"
	}
	return content
}
