// Package agent implements the conversational turn loop: send a
// prompt, parse the directives out of the reply, execute tool calls,
// forward delegations, and decide whether the task is complete.
package agent

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vinayprograms/swarm/internal/directive"
	"github.com/vinayprograms/swarm/internal/logging"
	"github.com/vinayprograms/swarm/internal/prompt"
	"github.com/vinayprograms/swarm/internal/scheduler"
	"github.com/vinayprograms/swarm/internal/session"
	"github.com/vinayprograms/swarm/internal/telemetry"
	"github.com/vinayprograms/swarm/internal/tool"
)

const defaultMaxNudges = 3

const nudgePrompt = "Your previous response contained no directives. " +
	"Continue the task with TOOL: or AGENT: directives, or signal completion with TOOL:done."

// ModelBinding is the slice of the model layer an agent needs.
type ModelBinding interface {
	SetSystemPrompt(text string)
	Send(ctx context.Context, text string) (string, error)
	Identifier() string
}

// Callbacks let an embedder observe a turn as it happens. All fields
// are optional.
type Callbacks struct {
	OnContent    func(agent, content string)
	OnToolResult func(agent string, result prompt.ToolResult)
}

// Options configures a new Agent.
type Options struct {
	Name    string
	Bio     string
	Binding ModelBinding
	Tools   *tool.Registry
	Sched   *scheduler.Scheduler
	Log     *logging.Logger

	// AwareOf lists the agent names this agent may delegate to; they
	// are named in the system prompt.
	AwareOf []string

	// Skills are extra instruction blocks appended to the system
	// prompt.
	Skills []string

	// Session, when set, receives the forensic event stream.
	Session *session.Session

	// MaxNudges bounds re-prompting after directive-free responses
	// (default 3).
	MaxNudges int

	Callbacks Callbacks
}

// Agent is one bound conversational actor. It implements
// scheduler.Agent.
type Agent struct {
	name      string
	bio       string
	binding   ModelBinding
	tools     *tool.Registry
	sched     *scheduler.Scheduler
	log       *logging.Logger
	sess      *session.Session
	awareOf   []string
	maxNudges int
	callbacks Callbacks
}

// New creates an agent and installs its system prompt on the binding.
func New(opts Options) *Agent {
	log := opts.Log
	if log == nil {
		log = logging.New()
	}
	maxNudges := opts.MaxNudges
	if maxNudges == 0 {
		maxNudges = defaultMaxNudges
	}
	tools := opts.Tools
	if tools == nil {
		tools = tool.NewRegistry()
	}

	a := &Agent{
		name:      opts.Name,
		bio:       opts.Bio,
		binding:   opts.Binding,
		tools:     tools,
		sched:     opts.Sched,
		log:       log.WithComponent("agent." + opts.Name),
		sess:      opts.Session,
		awareOf:   opts.AwareOf,
		maxNudges: maxNudges,
		callbacks: opts.Callbacks,
	}

	sys := BuildSystemPrompt(opts.Name, opts.Bio, tools, opts.AwareOf, opts.Skills)
	a.binding.SetSystemPrompt(sys)
	a.record(session.Event{Type: session.EventSystem, Agent: a.name, Content: sys})
	return a
}

// Name returns the agent's registered name.
func (a *Agent) Name() string { return a.name }

// HandlePrompt runs one full turn loop for a queued prompt. Model
// errors propagate to the scheduler, which re-queues an error report;
// every tool-level failure is converted into a result for the model
// instead.
func (a *Agent) HandlePrompt(ctx context.Context, payload prompt.Payload, correlationID string, source scheduler.Agent) error {
	ctx, span := telemetry.StartSpan(ctx, "agent.turn")
	span.SetAttributes(
		attribute.String("agent.name", a.name),
		attribute.String("correlation.id", correlationID),
	)
	start := time.Now()
	a.log.TurnStart(a.name, correlationID)

	current := payload
	if source != nil {
		if text, ok := current.(prompt.Text); ok {
			current = prompt.Text(fmt.Sprintf(
				"Message from agent %s [correlation %s]:\n%s", source.Name(), correlationID, string(text)))
		}
	}

	nudges := 0
	turns := 0
	var turnErr error
loop:
	for {
		turns++
		text := current.Render()
		a.record(session.Event{
			Type: session.EventUser, Agent: a.name,
			CorrelationID: correlationID, Content: text,
		})

		raw, err := a.binding.Send(ctx, text)
		if err != nil {
			turnErr = fmt.Errorf("agent %s: %w", a.name, err)
			break loop
		}
		a.record(session.Event{
			Type: session.EventAssistant, Agent: a.name,
			CorrelationID: correlationID, Content: raw,
		})

		msg := directive.Parse(raw)
		a.log.ParseWarnings(a.name, msg.Warnings)
		a.display(msg.Content)

		for _, ac := range msg.AgentCalls {
			a.log.Delegation(a.name, ac.Agent, ac.CorrelationID)
			a.record(session.Event{
				Type: session.EventDelegation, Agent: a.name,
				Source: a.name, Target: ac.Agent,
				CorrelationID: ac.CorrelationID, Content: ac.Message,
			})
			a.sched.SchedulePrompt(ac.Agent, prompt.Text(ac.Message), ac.CorrelationID, a)
		}

		if len(msg.ToolCalls) > 0 {
			// The batch becomes the next turn's input, even when the
			// completion sentinel was also present.
			results := a.executeTools(ctx, msg.ToolCalls)
			current = prompt.ToolResultBatch{Results: results}
			continue
		}

		if msg.Done {
			a.record(session.Event{
				Type: session.EventDone, Agent: a.name, CorrelationID: correlationID,
			})
			break loop
		}

		if len(msg.AgentCalls) > 0 {
			// Fire-and-forget: replies come back through the queue as
			// fresh prompts, so this turn is over.
			break loop
		}

		nudges++
		if nudges > a.maxNudges {
			a.log.Warn("nudge_limit_reached", map[string]interface{}{
				"agent":       a.name,
				"correlation": correlationID,
			})
			break loop
		}
		a.record(session.Event{
			Type: session.EventNudge, Agent: a.name, CorrelationID: correlationID,
		})
		current = prompt.Text(nudgePrompt)
	}

	a.record(session.Event{
		Type: session.EventTurnEnd, Agent: a.name,
		CorrelationID: correlationID, DurationMs: time.Since(start).Milliseconds(),
	})
	a.log.TurnComplete(a.name, correlationID, turns, time.Since(start))
	telemetry.EndSpan(span, turnErr)
	return turnErr
}

func (a *Agent) display(content string) {
	if content == "" {
		return
	}
	if a.callbacks.OnContent != nil {
		a.callbacks.OnContent(a.name, content)
		return
	}
	a.log.Info("content", map[string]interface{}{"text": content})
}

func (a *Agent) record(event session.Event) {
	if a.sess == nil {
		return
	}
	a.sess.AddEvent(event)
}
