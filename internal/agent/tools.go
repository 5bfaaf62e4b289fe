package agent

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/vinayprograms/swarm/internal/directive"
	"github.com/vinayprograms/swarm/internal/prompt"
	"github.com/vinayprograms/swarm/internal/session"
)

// concurrencyLimit bounds parallel tool execution within one batch.
func concurrencyLimit() int {
	limit := runtime.NumCPU() * 4
	if limit < 4 {
		limit = 4
	}
	if limit > 32 {
		limit = 32
	}
	return limit
}

// executeTools runs every call of one batch, concurrently but with
// results in request order. Each call carries its own correlation id,
// so completion order does not matter.
func (a *Agent) executeTools(ctx context.Context, calls []directive.ToolCall) []prompt.ToolResult {
	results := make([]prompt.ToolResult, len(calls))
	sem := make(chan struct{}, concurrencyLimit())
	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)
		go func(i int, call directive.ToolCall) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = a.executeOne(ctx, call)
		}(i, call)
	}
	wg.Wait()

	for _, r := range results {
		if a.callbacks.OnToolResult != nil {
			a.callbacks.OnToolResult(a.name, r)
		}
	}
	return results
}

// executeOne runs a single tool call, converting every failure mode
// (unknown tool or function, bad arguments, returned error, panic)
// into a result the model can react to.
func (a *Agent) executeOne(ctx context.Context, call directive.ToolCall) (res prompt.ToolResult) {
	res = prompt.ToolResult{CorrelationID: call.CorrelationID}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Content = fmt.Sprintf("tool %s.%s panicked: %v", call.Tool, call.Function, r)
			a.log.ToolResult(call.Tool, call.Function, time.Since(start), fmt.Errorf("%v", r))
			a.record(session.FailureEvent(session.Event{
				Type: session.EventToolResult, Agent: a.name,
				CorrelationID: call.CorrelationID,
				Tool:          call.Tool, Function: call.Function,
			}, res.Content))
		}
	}()

	a.log.ToolCall(call.Tool, call.Function, call.CorrelationID)
	a.record(session.Event{
		Type: session.EventToolCall, Agent: a.name,
		CorrelationID: call.CorrelationID,
		Tool:          call.Tool, Function: call.Function,
	})

	fail := func(err error) prompt.ToolResult {
		res.Success = false
		res.Content = err.Error()
		a.log.ToolResult(call.Tool, call.Function, time.Since(start), err)
		a.record(session.FailureEvent(session.Event{
			Type: session.EventToolResult, Agent: a.name,
			CorrelationID: call.CorrelationID,
			Tool:          call.Tool, Function: call.Function,
			DurationMs: time.Since(start).Milliseconds(),
		}, err.Error()))
		return res
	}

	fn, err := a.tools.Resolve(call.Tool, call.Function)
	if err != nil {
		return fail(err)
	}
	args, err := directive.EvalArgs(call.RawArgs)
	if err != nil {
		return fail(err)
	}
	out, err := fn(ctx, args)
	if err != nil {
		return fail(fmt.Errorf("%s.%s failed: %w", call.Tool, call.Function, err))
	}

	res.Success = true
	res.Content = out
	a.log.ToolResult(call.Tool, call.Function, time.Since(start), nil)
	a.record(session.SuccessEvent(session.Event{
		Type: session.EventToolResult, Agent: a.name,
		CorrelationID: call.CorrelationID,
		Tool:          call.Tool, Function: call.Function,
		Content:    out,
		DurationMs: time.Since(start).Milliseconds(),
	}))
	return res
}
