// Package tool defines the capability interface agents execute
// directives against. A tool is any value exposing an identifier and
// a named set of callables; there is no base type to subclass.
package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Func is one callable exposed by a tool. Arguments arrive already
// evaluated from their raw directive substrings.
type Func func(ctx context.Context, args []interface{}) (string, error)

// Tool is a named capability with one or more functions.
type Tool interface {
	Identifier() string
	Functions() map[string]Func
}

// Registry maps tool identifiers to live tools. Like the agent
// registry, a later registration under the same identifier wins.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its identifier.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Identifier()] = t
}

// Get returns the tool with the given identifier.
func (r *Registry) Get(id string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[id]
	return t, ok
}

// Resolve returns the callable for id.fn, or an error naming what was
// missing.
func (r *Registry) Resolve(id, fn string) (Func, error) {
	t, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", id)
	}
	f, ok := t.Functions()[fn]
	if !ok {
		return nil, fmt.Errorf("tool %q has no function %q", id, fn)
	}
	return f, nil
}

// Identifiers returns the registered tool identifiers, sorted.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tools))
	for id := range r.tools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Describe renders one line per tool function, for system prompts.
func (r *Registry) Describe() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var lines []string
	for id, t := range r.tools {
		for fn := range t.Functions() {
			lines = append(lines, fmt.Sprintf("%s.%s", id, fn))
		}
	}
	sort.Strings(lines)
	return lines
}
