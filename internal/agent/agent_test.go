package agent

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/vinayprograms/swarm/internal/llm"
	"github.com/vinayprograms/swarm/internal/logging"
	"github.com/vinayprograms/swarm/internal/prompt"
	"github.com/vinayprograms/swarm/internal/scheduler"
	"github.com/vinayprograms/swarm/internal/session"
	"github.com/vinayprograms/swarm/internal/tool"
)

func quietLogger() *logging.Logger {
	l := logging.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestAgent(t *testing.T, name string, sched *scheduler.Scheduler, sess *session.Session, replies ...string) (*Agent, *llm.Scripted) {
	t.Helper()
	provider := llm.NewScripted(replies...)
	binding := llm.NewBinding(provider, llm.BindingOptions{Model: "test"})
	registry := tool.NewRegistry()
	registry.Register(tool.Calc{})

	a := New(Options{
		Name:    name,
		Bio:     "a test agent",
		Binding: binding,
		Tools:   registry,
		Sched:   sched,
		Log:     quietLogger(),
		Session: sess,
	})
	if sched != nil {
		sched.RegisterAgent(a)
	}
	return a, provider
}

func TestHandlePromptDone(t *testing.T) {
	var shown []string
	sched := scheduler.New(quietLogger())
	a, provider := newTestAgent(t, "solo", sched, nil, "All good.\n\nTOOL:done")
	a.callbacks.OnContent = func(_, content string) { shown = append(shown, content) }

	err := a.HandlePrompt(context.Background(), prompt.Text("do the thing"), "default", nil)
	if err != nil {
		t.Fatalf("HandlePrompt: %v", err)
	}
	if provider.Calls() != 1 {
		t.Errorf("expected 1 model call, got %d", provider.Calls())
	}
	if len(shown) != 1 || !strings.Contains(shown[0], "[Task completed]") {
		t.Errorf("content display wrong: %v", shown)
	}
}

func TestHandlePromptToolLoop(t *testing.T) {
	sched := scheduler.New(quietLogger())
	a, provider := newTestAgent(t, "mathy", sched, nil,
		"TOOL:id-1:calc.add(5, 10, 15)",
		"The sum is 30.\n\nTOOL:done",
	)

	if err := a.HandlePrompt(context.Background(), prompt.Text("add the numbers"), "default", nil); err != nil {
		t.Fatalf("HandlePrompt: %v", err)
	}
	if provider.Calls() != 2 {
		t.Fatalf("expected 2 model calls, got %d", provider.Calls())
	}

	followUp := provider.Requests[1].Messages
	lastUser := followUp[len(followUp)-1]
	if lastUser.Role != llm.RoleUser {
		t.Fatalf("follow-up input not a user message: %+v", lastUser)
	}
	if !strings.Contains(lastUser.Content, "[id-1] ok: 30") {
		t.Errorf("tool result batch wrong: %q", lastUser.Content)
	}
}

func TestHandlePromptToolFailuresBecomeResults(t *testing.T) {
	sched := scheduler.New(quietLogger())
	a, provider := newTestAgent(t, "mathy", sched, nil,
		"TOOL:a:calc.divide(1, 0)\nTOOL:b:nosuch.fn(1)\nTOOL:c:calc.add(not-a-literal)\nTOOL:d:calc.add(2, 3)",
		"TOOL:done",
	)

	if err := a.HandlePrompt(context.Background(), prompt.Text("go"), "default", nil); err != nil {
		t.Fatalf("HandlePrompt: %v", err)
	}

	followUp := provider.Requests[1].Messages
	batch := followUp[len(followUp)-1].Content
	for _, want := range []string{
		"[a] error: calc.divide failed: division by zero",
		"[b] error: unknown tool \"nosuch\"",
		"[c] error: cannot evaluate argument",
		"[d] ok: 5",
	} {
		if !strings.Contains(batch, want) {
			t.Errorf("batch missing %q:\n%s", want, batch)
		}
	}
}

func TestHandlePromptDoneWithToolCallsStillFollowsUp(t *testing.T) {
	sched := scheduler.New(quietLogger())
	a, provider := newTestAgent(t, "mathy", sched, nil,
		"TOOL:id-1:calc.add(1, 2)\nTOOL:done",
		"TOOL:done",
	)

	if err := a.HandlePrompt(context.Background(), prompt.Text("go"), "default", nil); err != nil {
		t.Fatalf("HandlePrompt: %v", err)
	}
	if provider.Calls() != 2 {
		t.Errorf("done alongside tool calls must still produce a follow-up turn, got %d calls", provider.Calls())
	}
}

func TestHandlePromptNudgesPlainProse(t *testing.T) {
	sched := scheduler.New(quietLogger())
	a, provider := newTestAgent(t, "chatty", sched, nil,
		"Here are my thoughts, no directives.",
		"TOOL:done",
	)

	if err := a.HandlePrompt(context.Background(), prompt.Text("go"), "default", nil); err != nil {
		t.Fatalf("HandlePrompt: %v", err)
	}
	if provider.Calls() != 2 {
		t.Fatalf("expected nudge follow-up, got %d calls", provider.Calls())
	}
	msgs := provider.Requests[1].Messages
	nudge := msgs[len(msgs)-1].Content
	if !strings.Contains(nudge, "no directives") {
		t.Errorf("nudge prompt wrong: %q", nudge)
	}
}

func TestHandlePromptNudgeLimit(t *testing.T) {
	provider := llm.NewScripted("prose", "more prose", "still prose", "endless prose")
	binding := llm.NewBinding(provider, llm.BindingOptions{})
	a := New(Options{
		Name:      "chatty",
		Binding:   binding,
		Log:       quietLogger(),
		MaxNudges: 2,
	})

	if err := a.HandlePrompt(context.Background(), prompt.Text("go"), "default", nil); err != nil {
		t.Fatalf("HandlePrompt: %v", err)
	}
	// Initial send plus two nudges, then give up.
	if provider.Calls() != 3 {
		t.Errorf("expected 3 model calls, got %d", provider.Calls())
	}
}

func TestDelegationThroughScheduler(t *testing.T) {
	sched := scheduler.New(quietLogger())

	_, _ = newTestAgent(t, "orchestrator", sched, nil,
		`AGENT:task-1:writer("Draft the summary")`,
	)
	writer, writerProvider := newTestAgent(t, "writer", sched, nil, "TOOL:done")
	_ = writer

	sched.SchedulePrompt("orchestrator", prompt.Text("produce a summary"), "default", nil)
	if err := sched.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if writerProvider.Calls() != 1 {
		t.Fatalf("writer should have been prompted once, got %d", writerProvider.Calls())
	}
	msgs := writerProvider.Requests[0].Messages
	got := msgs[len(msgs)-1].Content
	if !strings.Contains(got, "Message from agent orchestrator") {
		t.Errorf("delegated prompt should name the source: %q", got)
	}
	if !strings.Contains(got, "Draft the summary") {
		t.Errorf("delegated prompt should carry the message: %q", got)
	}
	if !strings.Contains(got, "task-1") {
		t.Errorf("delegated prompt should carry the correlation id: %q", got)
	}
}

func TestModelErrorPropagatesAndSchedulerRetries(t *testing.T) {
	sched := scheduler.New(quietLogger())
	// The scripted provider has no replies, so every send fails and
	// every dispatch produces one more error report until the
	// scheduler's report bound trips.
	provider := llm.NewScripted()
	binding := llm.NewBinding(provider, llm.BindingOptions{})
	a := New(Options{Name: "broken", Binding: binding, Log: quietLogger(), Sched: sched})
	sched.RegisterAgent(a)

	sched.SchedulePrompt("broken", prompt.Text("go"), "default", nil)
	if err := sched.Process(context.Background()); err != nil {
		t.Fatalf("Process must not propagate handler errors: %v", err)
	}
	// Original prompt plus the bounded chain of error reports.
	if provider.Calls() != 4 {
		t.Errorf("expected 4 dispatches before the scheduler gives up, got %d", provider.Calls())
	}
}

func TestSessionRecording(t *testing.T) {
	sess := session.New("add numbers", []string{"mathy"})
	sched := scheduler.New(quietLogger())
	a, _ := newTestAgent(t, "mathy", sched, sess,
		"TOOL:id-1:calc.add(5, 10, 15)",
		"TOOL:done",
	)

	if err := a.HandlePrompt(context.Background(), prompt.Text("add"), "task-1", nil); err != nil {
		t.Fatalf("HandlePrompt: %v", err)
	}

	var types []string
	for _, e := range sess.Snapshot() {
		types = append(types, e.Type)
	}
	joined := strings.Join(types, ",")
	for _, want := range []string{
		session.EventSystem, session.EventUser, session.EventAssistant,
		session.EventToolCall, session.EventToolResult,
		session.EventDone, session.EventTurnEnd,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("session missing %q events: %v", want, types)
		}
	}
}
