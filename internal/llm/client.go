package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/ayush/research-ai-agent/assistant/internal/logging"
	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

const completionsPath = "/chat/completions"

// ClientConfig configures an OpenAI-compatible chat completions client.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	Logger     *zap.Logger
}

// Client calls an OpenAI-compatible /chat/completions endpoint over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	httpClient *http.Client
	log        *zap.Logger
	newBackOff func() backoff.BackOff
}

var _ Gateway = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logging.OrNop(cfg.Logger),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

type completionRequest struct {
	Model     string           `json:"model"`
	Messages  []models.Message `json:"messages"`
	MaxTokens int              `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the conversation and returns the first choice's content.
// Transport errors, 429 and 5xx are retried up to MaxRetries times; every
// other failure is returned as a *GatewayError straight away.
func (c *Client) Complete(ctx context.Context, messages []models.Message, model string, maxTokens int) (string, error) {
	body, err := json.Marshal(completionRequest{Model: model, Messages: messages, MaxTokens: maxTokens})
	if err != nil {
		return "", &GatewayError{Op: completionsPath, Err: err}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	notify := func(err error, wait time.Duration) {
		c.log.Warn("llm request failed, retrying",
			zap.String("model", model),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	content, err := backoff.RetryNotifyWithData(func() (string, error) {
		return c.do(ctx, body)
	}, policy, notify)
	if err != nil {
		var gwErr *GatewayError
		if errors.As(err, &gwErr) {
			return "", gwErr
		}
		return "", &GatewayError{Op: completionsPath, Err: err}
	}
	return content, nil
}

func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(&GatewayError{Op: completionsPath, Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(&GatewayError{Op: completionsPath, Err: err})
		}
		return "", &GatewayError{Op: completionsPath, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		gwErr := &GatewayError{Op: completionsPath, Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(msg)))}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", gwErr
		}
		return "", backoff.Permanent(gwErr)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", backoff.Permanent(&GatewayError{Op: completionsPath, Err: fmt.Errorf("decode: %w", err)})
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == nil {
		return "", backoff.Permanent(&GatewayError{Op: completionsPath, Err: ErrNoContent})
	}
	return *out.Choices[0].Message.Content, nil
}
