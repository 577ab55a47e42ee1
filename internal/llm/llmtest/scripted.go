// Package llmtest provides a scripted Gateway for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

// Reply is one scripted gateway outcome.
type Reply struct {
	Content string
	Err     error
}

// Call records one Complete invocation.
type Call struct {
	Messages  []models.Message
	Model     string
	MaxTokens int
}

// Prompt returns the content of the last message in the call.
func (c Call) Prompt() string {
	if len(c.Messages) == 0 {
		return ""
	}
	return c.Messages[len(c.Messages)-1].Content
}

// Gateway replays scripted replies in order and records every call.
type Gateway struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call
}

// New scripts successful replies.
func New(contents ...string) *Gateway {
	g := &Gateway{}
	for _, c := range contents {
		g.replies = append(g.replies, Reply{Content: c})
	}
	return g
}

// Then appends a scripted reply.
func (g *Gateway) Then(r Reply) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies = append(g.replies, r)
	return g
}

func (g *Gateway) Complete(_ context.Context, messages []models.Message, model string, maxTokens int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	msgs := make([]models.Message, len(messages))
	copy(msgs, messages)
	g.calls = append(g.calls, Call{Messages: msgs, Model: model, MaxTokens: maxTokens})

	if len(g.calls) > len(g.replies) {
		return "", fmt.Errorf("llmtest: no scripted reply for call %d", len(g.calls))
	}
	r := g.replies[len(g.calls)-1]
	return r.Content, r.Err
}

// Calls returns the recorded calls in order.
func (g *Gateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Call, len(g.calls))
	copy(out, g.calls)
	return out
}
