// Package research runs the document pipeline: plan a task chain, optionally
// gather and condense background research, then write the sections.
package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayush/research-ai-agent/assistant/internal/analyze"
	"github.com/ayush/research-ai-agent/assistant/internal/assemble"
	"github.com/ayush/research-ai-agent/assistant/internal/llm"
	"github.com/ayush/research-ai-agent/assistant/internal/logging"
	"github.com/ayush/research-ai-agent/assistant/internal/models"
	"github.com/ayush/research-ai-agent/assistant/internal/planner"
	"github.com/ayush/research-ai-agent/assistant/internal/search"
)

const backgroundTask = "Gather background research for the document"

const notesTemplate = `Generate structured notes from this transcript using the following format:

# Summary
[Brief summary of the content]

# Key Points
- [Key point 1]
- [Key point 2]

# Action Items
- [Action item 1]
- [Action item 2]

Transcript:
%s`

const reviewTemplate = "Analyze this %s code and provide:\n" +
	"1. A brief explanation of what it does\n" +
	"2. Potential improvements or issues\n" +
	"3. Best practices that could be applied\n\n" +
	"Code:\n```%s\n%s\n```"

var searchKeywords = []string{
	"search", "find", "look up", "google", "recent", "latest",
	"news", "information about", "what is", "who is",
}

// NeedsWebSearch reports whether a question reads like it wants fresh
// information from the web.
func NeedsWebSearch(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range searchKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// PageFetcher returns the readable text of a web page.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Config holds the per-call model settings.
type Config struct {
	Params         llm.Params
	PageFetchLimit int
}

// Service wires the planner, retrieval, analyzer and assembler together.
type Service struct {
	gw       llm.Gateway
	searcher search.Searcher
	pages    PageFetcher
	analyzer *analyze.Analyzer
	cfg      Config
	log      *zap.Logger
}

func NewService(gw llm.Gateway, searcher search.Searcher, pages PageFetcher, analyzer *analyze.Analyzer, cfg Config, log *zap.Logger) *Service {
	return &Service{gw: gw, searcher: searcher, pages: pages, analyzer: analyzer, cfg: cfg, log: logging.OrNop(log)}
}

// DocumentRun is the outcome of one successful pipeline run.
type DocumentRun struct {
	RunID      string
	Model      string
	Plan       *planner.Plan
	Sources    []models.SearchResult
	Background string
	Document   *models.Document
	Rendered   string
	// Transcript is the run's conversation: planning turns followed by one
	// turn per section.
	Transcript llm.Transcript
}

func (s *Service) params(model string) llm.Params {
	p := s.cfg.Params
	if model != "" {
		p.Model = model
	}
	return p
}

// Plan runs only the planning stage.
func (s *Service) Plan(ctx context.Context, req models.PlanRequest) (*planner.Plan, error) {
	return planner.New(s.gw, s.params(""), s.log).Plan(ctx, planner.Request{
		DocType:      req.DocType,
		Objective:    req.Objective,
		Requirements: req.Requirements,
	})
}

// CreateDocument plans, researches and writes a document. It returns an
// error, and no document, if any stage fails.
func (s *Service) CreateDocument(ctx context.Context, req models.CreateDocumentRequest) (*DocumentRun, error) {
	params := s.params(req.Model)
	run := &DocumentRun{RunID: uuid.NewString(), Model: params.Model}
	log := s.log.With(zap.String("run_id", run.RunID), zap.String("doc_type", req.DocType.String()))

	plan, err := planner.New(s.gw, params, log).Plan(ctx, planner.Request{
		DocType:      req.DocType,
		Objective:    req.Objective,
		Requirements: req.Requirements,
	})
	if err != nil {
		return nil, err
	}
	run.Plan = plan

	if req.WebSearch {
		run.Sources = s.searcher.Search(ctx, req.Objective)
		if len(run.Sources) == 0 {
			log.Info("background research found nothing", zap.String("objective", req.Objective))
		} else {
			text := s.researchText(ctx, run.Sources, req.FetchPages)
			run.Background, err = s.analyzer.ExtractRelevant(ctx, req.Objective, backgroundTask, text)
			if err != nil {
				return nil, err
			}
		}
	}

	res, err := assemble.New(s.gw, params, log).Assemble(ctx, assemble.Request{
		DocType:    req.DocType,
		Objective:  req.Objective,
		Tasks:      plan.Tasks,
		MaxItems:   plan.MaxItems,
		Background: run.Background,
		History:    plan.Transcript,
	})
	if err != nil {
		return nil, err
	}
	run.Document = res.Document
	run.Transcript = res.Transcript
	run.Rendered = res.Document.Render()

	log.Info("document created",
		zap.Int("sections", len(run.Document.Sections)),
		zap.Int("sources", len(run.Sources)))
	return run, nil
}

// researchText lists every result and, when asked, appends the text of the
// first few result pages. Pages that cannot be fetched are skipped.
func (s *Service) researchText(ctx context.Context, sources []models.SearchResult, fetchPages bool) string {
	var b strings.Builder
	b.WriteString(FormatSources(sources))

	if !fetchPages || s.pages == nil {
		return b.String()
	}
	fetched := 0
	for _, src := range sources {
		if fetched >= s.cfg.PageFetchLimit || ctx.Err() != nil {
			break
		}
		if src.URL == "" {
			continue
		}
		text, err := s.pages.FetchText(ctx, src.URL)
		if err != nil {
			s.log.Warn("page fetch failed", zap.String("url", src.URL), zap.Error(err))
			continue
		}
		fetched++
		fmt.Fprintf(&b, "\nSource: %s\n%s\n", src.URL, text)
	}
	return b.String()
}

// FormatSources renders results one per line as "- title: content (Source: url)".
func FormatSources(sources []models.SearchResult) string {
	var b strings.Builder
	for _, src := range sources {
		fmt.Fprintf(&b, "- %s: %s (Source: %s)\n", src.Title, src.Content, src.URL)
	}
	return b.String()
}

// Search runs the retrieval aggregator.
func (s *Service) Search(ctx context.Context, query string) []models.SearchResult {
	return s.searcher.Search(ctx, query)
}

// Extract runs the chunked analyzer over caller-supplied text.
func (s *Service) Extract(ctx context.Context, req models.ExtractRequest) (string, error) {
	return s.analyzer.ExtractRelevant(ctx, req.Objective, req.Task, req.Text)
}

// Ask answers one chat turn, grounding it in search results when requested
// or when the question looks like it needs the web.
func (s *Service) Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("ask: question is empty")
	}

	prompt := req.Question
	var sources []models.SearchResult
	if req.WebSearch || NeedsWebSearch(req.Question) {
		sources = s.searcher.Search(ctx, req.Question)
		if len(sources) > 0 {
			prompt = "Based on the following search results:\n\n" + FormatSources(sources) +
				"\nAnswer the following query: " + req.Question
		}
	}

	answer, tr, err := llm.Converse(ctx, s.gw, llm.Transcript(req.History), prompt, s.params(""))
	if err != nil {
		return nil, err
	}
	if sources == nil {
		sources = []models.SearchResult{}
	}
	return &models.AskResponse{Answer: answer, Sources: sources, History: tr.Messages()}, nil
}

// Notes turns a meeting or lecture transcript into Summary / Key Points /
// Action Items notes.
func (s *Service) Notes(ctx context.Context, req models.NotesRequest) (string, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return "", fmt.Errorf("notes: transcript is empty")
	}
	notes, _, err := llm.Converse(ctx, s.gw, nil, fmt.Sprintf(notesTemplate, req.Transcript), s.params(""))
	return notes, err
}

// ReviewCode asks the model to explain and critique a snippet. The code is
// never executed.
func (s *Service) ReviewCode(ctx context.Context, req models.CodeReviewRequest) (string, error) {
	if strings.TrimSpace(req.Code) == "" {
		return "", fmt.Errorf("review: code is empty")
	}
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = "text"
	}
	review, _, err := llm.Converse(ctx, s.gw, nil, fmt.Sprintf(reviewTemplate, lang, lang, req.Code), s.params(""))
	return review, err
}
