package scheduler

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/vinayprograms/swarm/internal/logging"
	"github.com/vinayprograms/swarm/internal/prompt"
)

// stubAgent records the prompts it handles and can schedule follow-up
// prompts or fail a configurable number of times.
type stubAgent struct {
	name     string
	sched    *Scheduler
	handled  []string
	failures int
	onHandle func(payload prompt.Payload, correlationID string, source Agent)
}

func (a *stubAgent) Name() string { return a.name }

func (a *stubAgent) HandlePrompt(ctx context.Context, payload prompt.Payload, correlationID string, source Agent) error {
	a.handled = append(a.handled, payload.Render())
	if a.failures > 0 {
		a.failures--
		return errors.New("model backend unavailable")
	}
	if a.onHandle != nil {
		a.onHandle(payload, correlationID, source)
	}
	return nil
}

func quietLogger() *logging.Logger {
	l := logging.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRegisterAgentLastWins(t *testing.T) {
	s := New(quietLogger())
	first := &stubAgent{name: "writer"}
	second := &stubAgent{name: "writer"}
	s.RegisterAgent(first)
	s.RegisterAgent(second)

	got, ok := s.Agent("writer")
	if !ok {
		t.Fatalf("agent not found after registration")
	}
	if got != Agent(second) {
		t.Errorf("last registration should win")
	}
	if names := s.Agents(); len(names) != 1 {
		t.Errorf("expected 1 registered name, got %v", names)
	}
}

func TestProcessDrainsFIFO(t *testing.T) {
	s := New(quietLogger())
	var order []string

	mk := func(name string) *stubAgent {
		a := &stubAgent{name: name, sched: s}
		a.onHandle = func(prompt.Payload, string, Agent) {
			order = append(order, name)
		}
		s.RegisterAgent(a)
		return a
	}
	mk("a")
	mk("b")
	mk("c")

	s.SchedulePrompt("b", prompt.Text("1"), "", nil)
	s.SchedulePrompt("a", prompt.Text("2"), "", nil)
	s.SchedulePrompt("c", prompt.Text("3"), "", nil)

	if err := s.Process(context.Background()); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	expected := []string{"b", "a", "c"}
	if strings.Join(order, ",") != strings.Join(expected, ",") {
		t.Errorf("dispatch order wrong. expected=%v, got=%v", expected, order)
	}
}

func TestProcessIsBreadthFirstAcrossWaves(t *testing.T) {
	s := New(quietLogger())
	var order []string

	leaf := func(name string) {
		a := &stubAgent{name: name}
		a.onHandle = func(prompt.Payload, string, Agent) { order = append(order, name) }
		s.RegisterAgent(a)
	}
	root := &stubAgent{name: "root"}
	root.onHandle = func(_ prompt.Payload, correlationID string, _ Agent) {
		order = append(order, "root")
		if len(order) == 1 {
			s.SchedulePrompt("left", prompt.Text("go"), correlationID, root)
			s.SchedulePrompt("right", prompt.Text("go"), correlationID, root)
		}
	}
	s.RegisterAgent(root)
	leaf("left")
	leaf("right")

	s.SchedulePrompt("root", prompt.Text("start"), "task-1", nil)
	s.SchedulePrompt("root", prompt.Text("second"), "task-2", nil)

	if err := s.Process(context.Background()); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	// Items queued while handling the first prompt run after the
	// items that were already waiting.
	expected := []string{"root", "root", "left", "right"}
	if strings.Join(order, ",") != strings.Join(expected, ",") {
		t.Errorf("wave order wrong. expected=%v, got=%v", expected, order)
	}
}

func TestScheduleToUnknownTargetBouncesToSource(t *testing.T) {
	s := New(quietLogger())
	src := &stubAgent{name: "orchestrator"}
	s.RegisterAgent(src)

	s.SchedulePrompt("nobody", prompt.Text("hello"), "task-9", src)

	if err := s.Process(context.Background()); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(src.handled) != 1 {
		t.Fatalf("expected exactly 1 bounced prompt, got %d", len(src.handled))
	}
	if !strings.Contains(src.handled[0], `no agent named "nobody"`) {
		t.Errorf("bounce message wrong: %q", src.handled[0])
	}
}

func TestScheduleToUnknownTargetWithoutSourceDropsWithLog(t *testing.T) {
	s := New(quietLogger())
	bystander := &stubAgent{name: "bystander"}
	s.RegisterAgent(bystander)

	s.SchedulePrompt("nobody", prompt.Text("hello"), "", nil)

	if err := s.Process(context.Background()); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(bystander.handled) != 0 {
		t.Errorf("no prompts should have been dispatched, got %v", bystander.handled)
	}
}

func TestHandlerErrorRequeuesOneReport(t *testing.T) {
	s := New(quietLogger())
	flaky := &stubAgent{name: "flaky", failures: 1}
	s.RegisterAgent(flaky)

	s.SchedulePrompt("flaky", prompt.Text("do work"), "task-3", nil)

	if err := s.Process(context.Background()); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(flaky.handled) != 2 {
		t.Fatalf("expected original + error report, got %d prompts", len(flaky.handled))
	}
	if !strings.Contains(flaky.handled[1], "failed with an error") {
		t.Errorf("second prompt should be the error report, got %q", flaky.handled[1])
	}
	if !strings.Contains(flaky.handled[1], "model backend unavailable") {
		t.Errorf("error report should carry the failure text, got %q", flaky.handled[1])
	}
}

func TestHandlerThatAlwaysFailsTerminates(t *testing.T) {
	s := New(quietLogger())
	hopeless := &stubAgent{name: "hopeless", failures: 1 << 30}
	s.RegisterAgent(hopeless)

	s.SchedulePrompt("hopeless", prompt.Text("go"), "", nil)

	if err := s.Process(context.Background()); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	// Original prompt plus the bounded chain of error reports.
	if len(hopeless.handled) != 1+maxErrorReports {
		t.Errorf("expected %d dispatches before giving up, got %d", 1+maxErrorReports, len(hopeless.handled))
	}
}

func TestProcessHonorsContextCancellation(t *testing.T) {
	s := New(quietLogger())
	a := &stubAgent{name: "a"}
	s.RegisterAgent(a)
	s.SchedulePrompt("a", prompt.Text("never runs"), "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Process(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(a.handled) != 0 {
		t.Errorf("no prompt should run after cancellation")
	}
}
