// Package llm defines the model binding an agent converses through:
// provider abstraction, role-tagged conversation context, and optional
// context persistence.
package llm

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a conversation context.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries the full conversation for one model call.
type ChatRequest struct {
	Model     string
	Messages  []Message
	MaxTokens int
}

// ChatResponse is the model's reply for one turn.
type ChatResponse struct {
	Content string
}

// Provider is a model backend. Chat suspends until the reply arrives
// or ctx is done.
type Provider interface {
	Identifier() string
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}
