// Package planner asks the completion service for a task chain and turns its
// refined answer into a bounded, ordered list of sections to write.
package planner

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ayush/research-ai-agent/assistant/internal/llm"
	"github.com/ayush/research-ai-agent/assistant/internal/logging"
	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

const refineTemplate = `Please review the following tasks and determine which sections or components need to be created for this %s:

%s

Refine the task chain by following these guidelines:
1. Do not include a general summary at the beginning or introductory remarks.
2. Generate a new numbered list of tasks, with each task linked to the creation of one specific section or component.
3. Only include tasks that involve creating content. Omit any tasks that do not require content creation.
4. For each task, provide the following information:
- Section: <section or component name> (e.g., Introduction, Chapter 1, Methodology)
- A brief description of the section's or component's purpose or content
5. At the end of the response, specify the maximum number of sections or components that need to be created using the format: Max = <number>
6. Only include the listed tasks and the maximum number of sections or components in your response`

// Request describes the document to plan. History is the caller's
// transcript; the planner extends a copy of it.
type Request struct {
	DocType      models.DocType
	Objective    string
	Requirements string
	History      llm.Transcript
}

// Plan is a bounded task chain. len(Tasks) <= MaxItems.
type Plan struct {
	Tasks      []models.TaskSpec
	MaxItems   int
	Refined    string
	Transcript llm.Transcript
}

// Planner runs the propose and refine exchanges.
type Planner struct {
	gw     llm.Gateway
	params llm.Params
	log    *zap.Logger
}

func New(gw llm.Gateway, params llm.Params, log *zap.Logger) *Planner {
	return &Planner{gw: gw, params: params, log: logging.OrNop(log)}
}

// Plan proposes a task chain, asks for it to be refined into the numbered
// format, and parses the result. Gateway errors are returned as they are; a
// refined answer without a Max line fails with *PlanningError.
func (p *Planner) Plan(ctx context.Context, req Request) (*Plan, error) {
	if strings.TrimSpace(req.Objective) == "" {
		return nil, &PlanningError{Reason: "objective is empty"}
	}

	propose := fmt.Sprintf("Create a task chain to develop a %s with the following objective: %s\n\n%s",
		req.DocType, req.Objective, req.Requirements)
	chain, tr, err := llm.Converse(ctx, p.gw, req.History, propose, p.params)
	if err != nil {
		return nil, err
	}

	refined, tr, err := llm.Converse(ctx, p.gw, tr, fmt.Sprintf(refineTemplate, req.DocType, chain), p.params)
	if err != nil {
		return nil, err
	}

	tasks, maxItems, err := ParsePlan(refined)
	if err != nil {
		p.log.Warn("task chain not in the expected format", zap.Error(err), zap.Int("length", len(refined)))
		return nil, err
	}

	p.log.Info("task chain planned",
		zap.String("doc_type", req.DocType.String()),
		zap.Int("tasks", len(tasks)),
		zap.Int("max_items", maxItems))
	return &Plan{Tasks: tasks, MaxItems: maxItems, Refined: refined, Transcript: tr}, nil
}
