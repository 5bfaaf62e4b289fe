package llm

import (
	"context"
	"fmt"
	"sync"
)

// Binding pairs a provider with one agent's conversation context. The
// context is owned exclusively by the binding: it grows by appending
// after every send/receive and is only replaced wholesale by
// LoadContext or ClearContext.
type Binding struct {
	mu       sync.Mutex
	provider Provider
	model    string
	maxTok   int
	messages []Message
	store    ContextStore
	key      string
}

// BindingOptions configures a new Binding.
type BindingOptions struct {
	Model     string
	MaxTokens int

	// Store enables SaveContext/LoadContext under Key. Both may be
	// left empty for a purely in-memory context.
	Store ContextStore
	Key   string
}

// NewBinding creates a binding with an empty context.
func NewBinding(provider Provider, opts BindingOptions) *Binding {
	return &Binding{
		provider: provider,
		model:    opts.Model,
		maxTok:   opts.MaxTokens,
		store:    opts.Store,
		key:      opts.Key,
	}
}

// Identifier returns the provider identifier plus model name.
func (b *Binding) Identifier() string {
	if b.model == "" {
		return b.provider.Identifier()
	}
	return b.provider.Identifier() + "/" + b.model
}

// SetSystemPrompt installs (or replaces) the system message at the
// head of the context.
func (b *Binding) SetSystemPrompt(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) > 0 && b.messages[0].Role == RoleSystem {
		b.messages[0].Content = text
		return
	}
	b.messages = append([]Message{{Role: RoleSystem, Content: text}}, b.messages...)
}

// Send appends text as a user message, calls the provider with the
// full context, appends the reply, and returns the reply text.
func (b *Binding) Send(ctx context.Context, text string) (string, error) {
	b.mu.Lock()
	b.messages = append(b.messages, Message{Role: RoleUser, Content: text})
	req := ChatRequest{
		Model:     b.model,
		Messages:  append([]Message(nil), b.messages...),
		MaxTokens: b.maxTok,
	}
	b.mu.Unlock()

	resp, err := b.provider.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	b.mu.Lock()
	b.messages = append(b.messages, Message{Role: RoleAssistant, Content: resp.Content})
	b.mu.Unlock()
	return resp.Content, nil
}

// Messages returns a copy of the current context.
func (b *Binding) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Message(nil), b.messages...)
}

// SaveContext persists the current context under the binding's key.
func (b *Binding) SaveContext() error {
	if b.store == nil {
		return nil
	}
	b.mu.Lock()
	msgs := append([]Message(nil), b.messages...)
	b.mu.Unlock()
	if err := b.store.Save(b.key, msgs); err != nil {
		return fmt.Errorf("save context %q: %w", b.key, err)
	}
	return nil
}

// LoadContext replaces the current context with the persisted one.
// A missing saved context leaves the binding untouched.
func (b *Binding) LoadContext() error {
	if b.store == nil {
		return nil
	}
	msgs, err := b.store.Load(b.key)
	if err != nil {
		return fmt.Errorf("load context %q: %w", b.key, err)
	}
	if msgs == nil {
		return nil
	}
	b.mu.Lock()
	b.messages = msgs
	b.mu.Unlock()
	return nil
}

// ClearContext empties the in-memory context and deletes the
// persisted copy, if any.
func (b *Binding) ClearContext() error {
	b.mu.Lock()
	b.messages = nil
	b.mu.Unlock()
	if b.store == nil {
		return nil
	}
	if err := b.store.Delete(b.key); err != nil {
		return fmt.Errorf("clear context %q: %w", b.key, err)
	}
	return nil
}
