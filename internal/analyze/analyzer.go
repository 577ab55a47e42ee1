// Package analyze extracts objective-relevant notes from text too large for a
// single completion request.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ayush/research-ai-agent/assistant/internal/llm"
	"github.com/ayush/research-ai-agent/assistant/internal/logging"
)

// NoRelevantInfo is returned when every chunk was analyzed and none yielded
// any text.
const NoRelevantInfo = "No relevant information found."

// ExtractionError means the gateway replied without content for a chunk.
// Notes gathered from earlier chunks are discarded.
type ExtractionError struct {
	Chunk int
	Start int
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract chunk %d (offset %d): %v", e.Chunk, e.Start, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Config sizes the windows and picks the extraction model.
type Config struct {
	ChunkSize int
	Overlap   int
	Params    llm.Params
}

// Analyzer runs the per-chunk extraction requests.
type Analyzer struct {
	gw     llm.Gateway
	size   int
	over   int
	params llm.Params
	log    *zap.Logger
}

func New(gw llm.Gateway, cfg Config, log *zap.Logger) (*Analyzer, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", cfg.ChunkSize, cfg.Overlap)
	}
	return &Analyzer{gw: gw, size: cfg.ChunkSize, over: cfg.Overlap, params: cfg.Params, log: logging.OrNop(log)}, nil
}

// ExtractRelevant asks the gateway, one chunk at a time and in order, for the
// parts of text that serve objective and task, and joins the extracts. Chunks
// are sent strictly in sequence. Cancellation is honoured between chunks; a
// request already in flight runs to completion.
func (a *Analyzer) ExtractRelevant(ctx context.Context, objective, task, text string) (string, error) {
	chunks := Split(text, a.size, a.over)
	a.log.Debug("extracting relevant information",
		zap.Int("chunks", len(chunks)),
		zap.Int("chunk_size", a.size),
		zap.Int("overlap", a.over))

	var notes strings.Builder
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("extract: stopped before chunk %d: %w", i, err)
		}

		messages := llm.Transcript{}.
			Append(llm.RoleSystem, fmt.Sprintf("Objective: %s\nCurrent Task: %s", objective, task)).
			Append(llm.RoleUser, "Analyze the following text and extract information relevant to our objective and current task. Text to analyze: "+chunk.Text+".")

		reply, err := a.gw.Complete(context.WithoutCancel(ctx), messages, a.params.Model, a.params.MaxTokens)
		if err != nil {
			if errors.Is(err, llm.ErrNoContent) {
				return "", &ExtractionError{Chunk: i, Start: chunk.Start, Err: err}
			}
			return "", err
		}

		if extract := strings.TrimSpace(reply); extract != "" {
			notes.WriteString(extract)
			notes.WriteString(". ")
		}
	}

	if strings.TrimSpace(notes.String()) == "" {
		return NoRelevantInfo, nil
	}
	return notes.String(), nil
}
