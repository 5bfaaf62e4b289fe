package llm

import (
	"context"
	"fmt"
	"sync"
)

// Scripted is a deterministic provider for tests: it returns its
// replies in order and errors once the script runs out.
type Scripted struct {
	mu      sync.Mutex
	replies []string
	next    int

	// Requests records every request seen, for assertions.
	Requests []ChatRequest
}

// NewScripted creates a scripted provider.
func NewScripted(replies ...string) *Scripted {
	return &Scripted{replies: replies}
}

func (s *Scripted) Identifier() string { return "scripted" }

func (s *Scripted) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return ChatResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)
	if s.next >= len(s.replies) {
		return ChatResponse{}, fmt.Errorf("scripted provider exhausted after %d replies", len(s.replies))
	}
	reply := s.replies[s.next]
	s.next++
	return ChatResponse{Content: reply}, nil
}

// Calls returns how many requests the script has served.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}
