// Package session provides the forensic record of one scheduler run:
// every prompt, model reply, directive, tool result, and delegation,
// persisted as a JSONL event stream.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"
)

// Status constants for sessions.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Event types for the session log.
const (
	// Conversation events
	EventSystem    = "system"    // System prompt installed on a binding
	EventUser      = "user"      // Prompt text sent to a model
	EventAssistant = "assistant" // Raw model response

	// Directive events
	EventToolCall   = "tool_call"   // TOOL: directive executed
	EventToolResult = "tool_result" // Tool completed
	EventDelegation = "delegation"  // AGENT: directive forwarded

	// Scheduler events
	EventDispatch = "dispatch" // Queue item handed to an agent
	EventTurnEnd  = "turn_end" // One agent turn finished
	EventNudge    = "nudge"    // Re-prompt after a directive-free response
	EventDone     = "done"     // Completion sentinel seen
)

// Session is one scheduler run: the initial task plus every event the
// agents produced while draining it.
type Session struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	Agents    []string  `json:"agents"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Events    []Event   `json:"events"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	seqCounter uint64
	mu         sync.Mutex
}

// Event is a single entry in the session log.
type Event struct {
	SeqID     uint64    `json:"seq"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// CorrelationID links a directive to its result events.
	CorrelationID string `json:"corr_id,omitempty"`

	// Agent is the acting agent; Source is set on dispatch and
	// delegation events when another agent originated the prompt.
	Agent  string `json:"agent,omitempty"`
	Source string `json:"source,omitempty"`

	// Content is the message text, reconstructed content, or tool
	// output, depending on Type.
	Content string `json:"content,omitempty"`

	// Tool and Function identify tool events.
	Tool     string `json:"tool,omitempty"`
	Function string `json:"function,omitempty"`

	// Target is the delegation target for delegation events.
	Target string `json:"target,omitempty"`

	Success    *bool  `json:"success,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// New creates a running session for the given task.
func New(task string, agents []string) *Session {
	now := time.Now()
	return &Session{
		ID:        generateID(),
		Task:      task,
		Agents:    agents,
		Status:    StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddEvent appends an event with automatic sequencing and returns its
// sequence id.
func (s *Session) AddEvent(event Event) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.SeqID = s.nextSeqID()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.Events = append(s.Events, event)
	s.UpdatedAt = time.Now()
	return event.SeqID
}

// Snapshot returns a copy of the events recorded so far.
func (s *Session) Snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.Events...)
}

// Finish marks the session complete, or failed when err is non-nil.
func (s *Session) Finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.Status = StatusFailed
		s.Error = err.Error()
	} else {
		s.Status = StatusComplete
	}
	s.UpdatedAt = time.Now()
}

func (s *Session) nextSeqID() uint64 {
	return atomic.AddUint64(&s.seqCounter, 1)
}

// generateID creates a unique session ID.
func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func boolPtr(b bool) *bool { return &b }

// SuccessEvent tags an event as succeeded.
func SuccessEvent(e Event) Event {
	e.Success = boolPtr(true)
	return e
}

// FailureEvent tags an event as failed with the given error text.
func FailureEvent(e Event, errText string) Event {
	e.Success = boolPtr(false)
	e.Error = errText
	return e
}
