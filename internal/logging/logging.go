// Package logging provides structured, standards-compliant logging.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging to stdout.
type Logger struct {
	mu        *sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a lowercase level name to a Level, defaulting to INFO.
func ParseLevel(name string) Level {
	switch name {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// New creates a new Logger writing to stdout at INFO.
func New() *Logger {
	return &Logger{
		mu:       &sync.Mutex{},
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger with the given component name.
// The underlying writer (and its lock) is shared.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		mu:        l.mu,
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs in stable
// key order.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Domain helpers ---

// TurnStart logs the start of one agent turn.
func (l *Logger) TurnStart(agent, correlationID string) {
	l.Info("turn_start", map[string]interface{}{
		"agent":       agent,
		"correlation": correlationID,
	})
}

// TurnComplete logs the end of one agent turn.
func (l *Logger) TurnComplete(agent, correlationID string, turns int, duration time.Duration) {
	l.Info("turn_complete", map[string]interface{}{
		"agent":       agent,
		"correlation": correlationID,
		"turns":       turns,
		"duration":    duration.String(),
	})
}

// Dispatch logs one queue item being handed to its target agent.
func (l *Logger) Dispatch(agent, correlationID string, depth int) {
	l.Debug("dispatch", map[string]interface{}{
		"agent":       agent,
		"correlation": correlationID,
		"queue_depth": depth,
	})
}

// ToolCall logs a tool invocation. Arguments are not logged.
func (l *Logger) ToolCall(tool, function, correlationID string) {
	l.Info("tool_call", map[string]interface{}{
		"tool":        tool,
		"function":    function,
		"correlation": correlationID,
	})
}

// ToolResult logs a tool result.
func (l *Logger) ToolResult(tool, function string, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"tool":     tool,
		"function": function,
		"duration": duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Error("tool_error", fields)
	} else {
		l.Debug("tool_result", fields)
	}
}

// Delegation logs one agent-to-agent directive being forwarded.
func (l *Logger) Delegation(source, target, correlationID string) {
	l.Info("delegation", map[string]interface{}{
		"source":      source,
		"target":      target,
		"correlation": correlationID,
	})
}

// ParseWarnings logs recoverable directive-parse problems.
func (l *Logger) ParseWarnings(agent string, warnings []string) {
	for _, w := range warnings {
		l.Warn("parse_warning", map[string]interface{}{
			"agent":   agent,
			"warning": w,
		})
	}
}
