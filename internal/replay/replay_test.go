package replay

import (
	"strings"
	"testing"

	"github.com/vinayprograms/swarm/internal/session"
)

func sampleSession() *session.Session {
	sess := session.New("Summarize the report", []string{"orchestrator", "writer"})
	sess.AddEvent(session.Event{Type: session.EventSystem, Agent: "orchestrator", Content: "system prompt"})
	sess.AddEvent(session.Event{Type: session.EventUser, Agent: "orchestrator", Content: "Summarize the report"})
	sess.AddEvent(session.Event{Type: session.EventAssistant, Agent: "orchestrator", Content: "Working on it."})
	sess.AddEvent(session.Event{
		Type: session.EventToolCall, Agent: "orchestrator",
		Tool: "fs", Function: "readFile", CorrelationID: "r1",
	})
	sess.AddEvent(session.SuccessEvent(session.Event{
		Type: session.EventToolResult, Agent: "orchestrator",
		CorrelationID: "r1", Content: "report text", DurationMs: 12,
	}))
	sess.AddEvent(session.Event{
		Type: session.EventDelegation, Agent: "orchestrator",
		Target: "writer", CorrelationID: "sum", Content: "Write the summary",
	})
	sess.AddEvent(session.Event{Type: session.EventNudge, Agent: "writer"})
	sess.AddEvent(session.Event{Type: session.EventDone, Agent: "writer"})
	sess.AddEvent(session.Event{Type: session.EventTurnEnd, Agent: "writer", DurationMs: 340})
	sess.Finish(nil)
	return sess
}

func TestReplayTimeline(t *testing.T) {
	var buf strings.Builder
	r := New(&buf, 0)

	if err := r.Replay(sampleSession()); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"SESSION",
		"Summarize the report",
		"TOOL:", "fs.readFile",
		"DELEGATE:", "orchestrator → writer",
		"NUDGE",
		"DONE",
		"COMPLETED",
		"Tool Calls:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestVerboseShowsContent(t *testing.T) {
	sess := sampleSession()

	var quiet strings.Builder
	if err := New(&quiet, 0).Replay(sess); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if strings.Contains(quiet.String(), "Working on it.") {
		t.Error("verbosity 0 should not print response bodies")
	}

	var verbose strings.Builder
	if err := New(&verbose, 1).Replay(sess); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if !strings.Contains(verbose.String(), "Working on it.") {
		t.Error("verbosity 1 should print response bodies")
	}
}

func TestContentTruncation(t *testing.T) {
	sess := session.New("task", []string{"a"})
	sess.AddEvent(session.Event{
		Type: session.EventAssistant, Agent: "a",
		Content: strings.Repeat("x", 200),
	})

	var buf strings.Builder
	r := New(&buf, 1, WithMaxContentSize(50))
	if err := r.Replay(sess); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if !strings.Contains(buf.String(), "[truncated]") {
		t.Error("expected oversized content to be truncated")
	}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(sampleSession())

	if stats.ToolCallCount != 1 {
		t.Errorf("tool calls expected=1, got=%d", stats.ToolCallCount)
	}
	if stats.ToolFailures != 0 {
		t.Errorf("tool failures expected=0, got=%d", stats.ToolFailures)
	}
	if stats.DelegationCount != 1 {
		t.Errorf("delegations expected=1, got=%d", stats.DelegationCount)
	}
	if stats.NudgeCount != 1 {
		t.Errorf("nudges expected=1, got=%d", stats.NudgeCount)
	}
	if stats.AgentTurnMs["writer"] != 340 {
		t.Errorf("writer turn time expected=340, got=%d", stats.AgentTurnMs["writer"])
	}
}

func TestFailedSessionSummary(t *testing.T) {
	sess := session.New("task", []string{"a"})
	sess.Finish(errDummy{})

	var buf strings.Builder
	if err := New(&buf, 0).Replay(sess); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if !strings.Contains(buf.String(), "FAILED:") {
		t.Error("expected FAILED summary line")
	}
}

type errDummy struct{}

func (errDummy) Error() string { return "model unreachable" }
