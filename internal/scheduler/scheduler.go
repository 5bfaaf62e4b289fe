// Package scheduler owns the agent registry and the FIFO prompt queue
// that carries cross-agent messages. All coordination state lives in
// one Scheduler instance; there is no ambient/global registry.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vinayprograms/swarm/internal/directive"
	"github.com/vinayprograms/swarm/internal/logging"
	"github.com/vinayprograms/swarm/internal/prompt"
	"github.com/vinayprograms/swarm/internal/telemetry"
)

// Agent is the scheduler's view of a registered agent. HandlePrompt
// runs one full conversational turn loop, including any tool
// execution and further scheduling it triggers, before returning.
type Agent interface {
	Name() string
	HandlePrompt(ctx context.Context, payload prompt.Payload, correlationID string, source Agent) error
}

// maxErrorReports bounds how many consecutive error reports one
// failing prompt can generate before the scheduler gives up on it.
// Without the bound a permanently failing handler would keep the
// drain loop alive forever.
const maxErrorReports = 3

type queueItem struct {
	target        Agent
	payload       prompt.Payload
	correlationID string
	source        Agent
	reports       int
}

// Scheduler is a FIFO work list of pending prompts plus the registry
// of live agents. Handling one item may enqueue more (including to the
// same agent), so a drain proceeds breadth-first across waves of
// delegation until the queue is empty.
type Scheduler struct {
	mu     sync.Mutex
	queue  []queueItem
	agents map[string]Agent
	log    *logging.Logger
}

// New creates an empty scheduler.
func New(log *logging.Logger) *Scheduler {
	if log == nil {
		log = logging.New()
	}
	return &Scheduler{
		agents: make(map[string]Agent),
		log:    log.WithComponent("scheduler"),
	}
}

// RegisterAgent adds an agent to the registry. A later registration
// under the same name replaces the earlier one.
func (s *Scheduler) RegisterAgent(a Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a.Name()] = a
}

// Agent returns the registered agent with the given name, if any.
func (s *Scheduler) Agent(name string) (Agent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[name]
	return a, ok
}

// Agents returns the registered agent names.
func (s *Scheduler) Agents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.agents))
	for name := range s.agents {
		names = append(names, name)
	}
	return names
}

// SchedulePrompt enqueues a prompt for the named agent. An unknown
// target is not a silent drop: when the caller identifies itself via
// source, a failure message is scheduled back to it so the misrouted
// delegation stays visible and recoverable; with no source the miss is
// only logged.
func (s *Scheduler) SchedulePrompt(target string, payload prompt.Payload, correlationID string, source Agent) {
	if correlationID == "" {
		correlationID = directive.DefaultCorrelationID
	}

	s.mu.Lock()
	agent, ok := s.agents[target]
	s.mu.Unlock()

	if !ok {
		msg := fmt.Sprintf("Delegation failed: no agent named %q is registered.", target)
		if source == nil {
			s.log.Warn("unknown_target", map[string]interface{}{
				"target":      target,
				"correlation": correlationID,
			})
			return
		}
		s.SchedulePrompt(source.Name(), prompt.Text(msg), correlationID, nil)
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, queueItem{
		target:        agent,
		payload:       payload,
		correlationID: correlationID,
		source:        source,
	})
	depth := len(s.queue)
	s.mu.Unlock()

	s.log.Dispatch(target, correlationID, depth)
}

// Process drains the queue strictly FIFO until it is empty, awaiting
// each agent's full turn before moving on. A handler error is not
// propagated; instead exactly one error-report prompt is re-enqueued
// to the same agent with the same correlation id and source, so the
// agent can react to its own failure.
func (s *Scheduler) Process(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "scheduler.process")
	defer span.End()

	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			break
		}
		item := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		processed++
		s.dispatch(ctx, item)
	}

	span.SetAttributes(attribute.Int("scheduler.processed", processed))
	return nil
}

func (s *Scheduler) dispatch(ctx context.Context, item queueItem) {
	ctx, span := telemetry.StartSpan(ctx, "scheduler.dispatch")
	span.SetAttributes(
		attribute.String("agent.name", item.target.Name()),
		attribute.String("correlation.id", item.correlationID),
	)

	err := item.target.HandlePrompt(ctx, item.payload, item.correlationID, item.source)
	telemetry.EndSpan(span, err)
	if err == nil {
		return
	}

	s.log.Error("handler_failed", map[string]interface{}{
		"agent":       item.target.Name(),
		"correlation": item.correlationID,
		"error":       err.Error(),
	})

	if item.reports >= maxErrorReports {
		s.log.Error("giving_up", map[string]interface{}{
			"agent":       item.target.Name(),
			"correlation": item.correlationID,
			"reports":     item.reports,
		})
		return
	}

	report := prompt.Text(fmt.Sprintf(
		"Your previous turn failed with an error: %v. Review the failure, then retry or signal completion with TOOL:done.", err))
	s.mu.Lock()
	s.queue = append(s.queue, queueItem{
		target:        item.target,
		payload:       report,
		correlationID: item.correlationID,
		source:        item.source,
		reports:       item.reports + 1,
	})
	s.mu.Unlock()
}
