// Package llm is the boundary to the text-completion service. Everything
// above it talks to a Gateway and threads an append-only Transcript through
// sequential calls.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNoContent is wrapped by a GatewayError when a reply has no content field.
var ErrNoContent = errors.New("completion has no content")

// Gateway completes a conversation.
type Gateway interface {
	Complete(ctx context.Context, messages []models.Message, model string, maxTokens int) (string, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, messages []models.Message, model string, maxTokens int) (string, error)

func (f GatewayFunc) Complete(ctx context.Context, messages []models.Message, model string, maxTokens int) (string, error) {
	return f(ctx, messages, model, maxTokens)
}

// GatewayError is a failed completion: transport, non-2xx status or a reply
// without content.
type GatewayError struct {
	Op     string
	Status int
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Params selects the model and reply budget for a call.
type Params struct {
	Model     string
	MaxTokens int
}

// Transcript is an append-only conversation. Append never mutates the
// receiver's backing array, so earlier values stay valid for replay.
type Transcript []models.Message

// Append returns a new transcript with one more message.
func (t Transcript) Append(role, content string) Transcript {
	out := make(Transcript, len(t), len(t)+1)
	copy(out, t)
	return append(out, models.Message{Role: role, Content: content})
}

// Messages returns a copy safe to hand to a caller.
func (t Transcript) Messages() []models.Message {
	out := make([]models.Message, len(t))
	copy(out, t)
	return out
}

// Converse sends prompt as the next user turn and returns the reply together
// with the transcript extended by both turns. On error the input transcript
// is returned unchanged.
func Converse(ctx context.Context, gw Gateway, tr Transcript, prompt string, p Params) (string, Transcript, error) {
	withPrompt := tr.Append(RoleUser, prompt)
	reply, err := gw.Complete(ctx, withPrompt, p.Model, p.MaxTokens)
	if err != nil {
		return "", tr, err
	}
	return reply, withPrompt.Append(RoleAssistant, reply), nil
}
