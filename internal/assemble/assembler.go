// Package assemble writes a document one section at a time from a planned
// task chain.
package assemble

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ayush/research-ai-agent/assistant/internal/llm"
	"github.com/ayush/research-ai-agent/assistant/internal/logging"
	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

// Request is everything needed to write a document. Tasks with an Index above
// MaxItems are skipped.
type Request struct {
	DocType    models.DocType
	Objective  string
	Tasks      []models.TaskSpec
	MaxItems   int
	Background string
	History    llm.Transcript
}

// Result is the finished document and the transcript extended by one
// exchange per section.
type Result struct {
	Document   *models.Document
	Transcript llm.Transcript
}

// Assembler requests section content from the gateway.
type Assembler struct {
	gw     llm.Gateway
	params llm.Params
	log    *zap.Logger
}

func New(gw llm.Gateway, params llm.Params, log *zap.Logger) *Assembler {
	return &Assembler{gw: gw, params: params, log: logging.OrNop(log)}
}

// Assemble generates sections in task order. Any failure aborts the whole
// document; no partial document is returned. Cancellation is checked between
// sections, never during a section request.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Result, error) {
	doc := &models.Document{DocType: req.DocType, Objective: req.Objective}
	tr := req.History

	for _, task := range req.Tasks {
		if task.Index > req.MaxItems {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("assemble: stopped before section %d: %w", task.Index, err)
		}

		prompt := fmt.Sprintf("Write the '%s' section for a %s with the objective: %s. Based on this task description: %s. Use this background research if relevant: %s",
			task.Title, req.DocType, req.Objective, task.Description, req.Background)

		body, next, err := llm.Converse(context.WithoutCancel(ctx), a.gw, tr, prompt, a.params)
		if err != nil {
			a.log.Error("section generation failed",
				zap.Int("index", task.Index),
				zap.String("title", task.Title),
				zap.Error(err))
			return nil, err
		}
		if strings.TrimSpace(body) == "" {
			return nil, fmt.Errorf("assemble: section %d %q came back empty", task.Index, task.Title)
		}

		tr = next
		doc.Sections = append(doc.Sections, models.DocumentSection{Title: task.Title, Body: body})
		a.log.Debug("section written", zap.Int("index", task.Index), zap.String("title", task.Title), zap.Int("length", len(body)))
	}

	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("assemble: no tasks within Max = %d", req.MaxItems)
	}
	return &Result{Document: doc, Transcript: tr}, nil
}
