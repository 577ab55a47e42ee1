package research

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ayush/research-ai-agent/assistant/internal/analyze"
	"github.com/ayush/research-ai-agent/assistant/internal/auth"
	"github.com/ayush/research-ai-agent/assistant/internal/httpx"
	"github.com/ayush/research-ai-agent/assistant/internal/llm"
	"github.com/ayush/research-ai-agent/assistant/internal/logging"
	"github.com/ayush/research-ai-agent/assistant/internal/models"
	"github.com/ayush/research-ai-agent/assistant/internal/planner"
	"github.com/ayush/research-ai-agent/assistant/internal/store"
)

// DocumentStore defines the interface for document record persistence.
type DocumentStore interface {
	Insert(ctx context.Context, rec *models.DocumentRecord) (string, error)
	ListByUser(ctx context.Context, userID string) ([]models.DocumentRecord, error)
	Get(ctx context.Context, userID, id string) (*models.DocumentRecord, error)
	Delete(ctx context.Context, userID, id string) error
}

// FileStore defines the interface for rendered document storage.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Pipeline is the part of Service the handlers use.
type Pipeline interface {
	CreateDocument(ctx context.Context, req models.CreateDocumentRequest) (*DocumentRun, error)
	Plan(ctx context.Context, req models.PlanRequest) (*planner.Plan, error)
	Search(ctx context.Context, query string) []models.SearchResult
	Extract(ctx context.Context, req models.ExtractRequest) (string, error)
	Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error)
	Notes(ctx context.Context, req models.NotesRequest) (string, error)
	ReviewCode(ctx context.Context, req models.CodeReviewRequest) (string, error)
}

// Handler holds the document and research HTTP handlers.
type Handler struct {
	docs     DocumentStore
	files    FileStore
	pipeline Pipeline
	log      *zap.Logger
}

func NewHandler(docs DocumentStore, files FileStore, pipeline Pipeline, log *zap.Logger) *Handler {
	return &Handler{docs: docs, files: files, pipeline: pipeline, log: logging.OrNop(log)}
}

// Routes mounts the protected research routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/download", h.Download)
	})
	r.Post("/plan", h.PlanTasks)
	r.Post("/search", h.Search)
	r.Post("/extract", h.Extract)
	r.Post("/ask", h.Ask)
	r.Post("/notes", h.Notes)
	r.Post("/review", h.Review)
}

// statusFor maps pipeline errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	var (
		planErr *planner.PlanningError
		extErr  *analyze.ExtractionError
		gwErr   *llm.GatewayError
	)
	switch {
	case errors.As(err, &planErr):
		return http.StatusUnprocessableEntity, "Could not determine the document sections: " + planErr.Reason
	case errors.As(err, &extErr):
		return http.StatusBadGateway, "Background research extraction failed: " + extErr.Error()
	case errors.As(err, &gwErr):
		return http.StatusBadGateway, "Language model request failed: " + gwErr.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Request cancelled before the document was complete"
	default:
		return http.StatusInternalServerError, "Document creation failed"
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	status, msg := statusFor(err)
	h.log.Error(op+" failed", zap.Int("status", status), zap.Error(err))
	httpx.WriteError(w, status, msg)
}

func userID(r *http.Request) string {
	id, _ := auth.UserID(r.Context())
	return id
}

// Create runs the full document pipeline and stores the result. Nothing is
// stored unless every section was written.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req models.CreateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Objective = strings.TrimSpace(req.Objective)
	if req.Objective == "" {
		httpx.WriteError(w, http.StatusBadRequest, "objective is required")
		return
	}

	run, err := h.pipeline.CreateDocument(r.Context(), req)
	if err != nil {
		h.fail(w, "create document", err)
		return
	}

	key := store.DocumentKey(uid, run.RunID)
	if err := h.files.Upload(r.Context(), key, []byte(run.Rendered), store.MarkdownContentType); err != nil {
		h.fail(w, "upload document", err)
		return
	}

	rec := &models.DocumentRecord{
		UserID:       uid,
		RunID:        run.RunID,
		DocType:      req.DocType.String(),
		Objective:    req.Objective,
		Requirements: req.Requirements,
		Tasks:        run.Plan.Tasks,
		MaxItems:     run.Plan.MaxItems,
		Sections:     run.Document.Sections,
		Sources:      run.Sources,
		Background:   run.Background,
		ModelUsed:    run.Model,
		ObjectKey:    key,
	}
	if _, err := h.docs.Insert(r.Context(), rec); err != nil {
		if rmErr := h.files.Remove(context.WithoutCancel(r.Context()), key); rmErr != nil {
			h.log.Warn("orphaned document object", zap.String("key", key), zap.Error(rmErr))
		}
		h.fail(w, "save document", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, rec)
}

// List returns the current user's documents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.docs.ListByUser(r.Context(), userID(r))
	if err != nil {
		h.log.Error("list documents failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if recs == nil {
		recs = []models.DocumentRecord{}
	}
	httpx.WriteJSON(w, http.StatusOK, recs)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*models.DocumentRecord, bool) {
	rec, err := h.docs.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not found")
		return nil, false
	}
	if err != nil {
		h.log.Error("get document failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	return rec, true
}

// Get returns a single document record.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if rec, ok := h.lookup(w, r); ok {
		httpx.WriteJSON(w, http.StatusOK, rec)
	}
}

// Delete removes a document record and its rendered file.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if rec.ObjectKey != "" {
		if err := h.files.Remove(r.Context(), rec.ObjectKey); err != nil {
			h.log.Warn("remove document object failed", zap.String("key", rec.ObjectKey), zap.Error(err))
		}
	}
	if err := h.docs.Delete(r.Context(), rec.UserID, rec.ID.Hex()); err != nil {
		h.log.Error("delete document failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// Download streams the rendered Markdown from object storage.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	data, ct, err := h.files.Download(r.Context(), rec.ObjectKey)
	if err != nil {
		h.log.Error("download document failed", zap.String("key", rec.ObjectKey), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "download failed")
		return
	}
	if ct == "" {
		ct = store.MarkdownContentType
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", "attachment; filename=document.md")
	w.Write(data)
}

// PlanTasks returns the bounded task chain without writing the document.
func (h *Handler) PlanTasks(w http.ResponseWriter, r *http.Request) {
	var req models.PlanRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.Objective) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "objective is required")
		return
	}
	plan, err := h.pipeline.Plan(r.Context(), req)
	if err != nil {
		h.fail(w, "plan", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tasks": plan.Tasks, "max_items": plan.MaxItems})
}

// Search runs the retrieval aggregator. No results is a 200 with an empty list.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.Query) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "query is required")
		return
	}
	results := h.pipeline.Search(r.Context(), req.Query)
	if results == nil {
		results = []models.SearchResult{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Extract runs the chunked analyzer over the posted text.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req models.ExtractRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.Objective) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "objective is required")
		return
	}
	notes, err := h.pipeline.Extract(r.Context(), req)
	if err != nil {
		h.fail(w, "extract", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"notes": notes})
}

// Ask answers one chat turn.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.Question) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "question is required")
		return
	}
	resp, err := h.pipeline.Ask(r.Context(), req)
	if err != nil {
		h.fail(w, "ask", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// Notes summarizes a posted transcript.
func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	var req models.NotesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.Transcript) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "transcript is required")
		return
	}
	notes, err := h.pipeline.Notes(r.Context(), req)
	if err != nil {
		h.fail(w, "notes", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"notes": notes})
}

// Review explains and critiques a posted code snippet without running it.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req models.CodeReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.Code) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "code is required")
		return
	}
	review, err := h.pipeline.ReviewCode(r.Context(), req)
	if err != nil {
		h.fail(w, "review", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"review": review})
}
