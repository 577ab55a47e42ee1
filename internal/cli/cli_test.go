package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayush/research-ai-agent/assistant/internal/config"
	"github.com/ayush/research-ai-agent/assistant/internal/models"
	"github.com/ayush/research-ai-agent/assistant/internal/planner"
	"github.com/ayush/research-ai-agent/assistant/internal/research"
)

type fakePipeline struct {
	createReq models.CreateDocumentRequest
	createErr error
	extract   models.ExtractRequest
	asked     models.AskRequest
	results   []models.SearchResult
	calls     int
}

func (f *fakePipeline) CreateDocument(_ context.Context, req models.CreateDocumentRequest) (*research.DocumentRun, error) {
	f.calls++
	f.createReq = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	doc := &models.Document{
		DocType:   req.DocType,
		Objective: req.Objective,
		Sections:  []models.DocumentSection{{Title: "Intro", Body: "Hello."}},
	}
	return &research.DocumentRun{RunID: "run-1", Document: doc, Rendered: doc.Render()}, nil
}

func (f *fakePipeline) Search(_ context.Context, _ string) []models.SearchResult {
	f.calls++
	return f.results
}

func (f *fakePipeline) Extract(_ context.Context, req models.ExtractRequest) (string, error) {
	f.calls++
	f.extract = req
	return "relevant notes. ", nil
}

func (f *fakePipeline) Ask(_ context.Context, req models.AskRequest) (*models.AskResponse, error) {
	f.calls++
	f.asked = req
	return &models.AskResponse{Answer: "42", Sources: f.results}, nil
}

func execute(t *testing.T, p *fakePipeline, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	root := NewRootCmd(func(*config.Config, *zap.Logger) (Pipeline, error) { return p, nil })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDocument_WritesFileOnSuccess(t *testing.T) {
	p := &fakePipeline{}
	path := filepath.Join(t.TempDir(), "report.md")

	out, err := execute(t, p, "", "document", "--type", "research report", "--objective", "tides",
		"--websearch", "--out", path, "keep", "it", "short")
	require.NoError(t, err)

	assert.Equal(t, models.DocTypeResearchReport, p.createReq.DocType)
	assert.Equal(t, "keep it short", p.createReq.Requirements)
	assert.True(t, p.createReq.WebSearch)
	assert.Contains(t, out, "Wrote 1 sections to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Research Report\n\n## Objective: tides"))
}

func TestDocument_NoFileOnFailure(t *testing.T) {
	p := &fakePipeline{createErr: &planner.PlanningError{Reason: "no Max line"}}
	path := filepath.Join(t.TempDir(), "report.md")

	_, err := execute(t, p, "", "document", "--objective", "tides", "--out", path)

	var planErr *planner.PlanningError
	require.ErrorAs(t, err, &planErr)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDocument_RejectsUnknownType(t *testing.T) {
	p := &fakePipeline{}

	_, err := execute(t, p, "", "document", "--type", "limerick", "--objective", "x")

	assert.Error(t, err)
	assert.Zero(t, p.calls)
}

func TestDocument_RequiresObjective(t *testing.T) {
	_, err := execute(t, &fakePipeline{}, "", "document")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "objective")
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "research_report.md", defaultOutputPath(models.DocTypeResearchReport))
	assert.Equal(t, "document.md", defaultOutputPath(models.DocTypeDocument))
}

func TestSearch_PrintsJSON(t *testing.T) {
	p := &fakePipeline{results: []models.SearchResult{{Title: "Go", URL: "https://go.dev", Source: models.ProviderWikipedia}}}

	out, err := execute(t, p, "", "search", "golang", "release")
	require.NoError(t, err)

	assert.Contains(t, out, `"title": "Go"`)
	assert.Contains(t, out, `"source": "wikipedia"`)
}

func TestExtract_ReadsStdin(t *testing.T) {
	p := &fakePipeline{}

	out, err := execute(t, p, "some long text", "extract", "--objective", "obj", "--task", "task")
	require.NoError(t, err)

	assert.Equal(t, models.ExtractRequest{Objective: "obj", Task: "task", Text: "some long text"}, p.extract)
	assert.Contains(t, out, "relevant notes.")
}

func TestAsk_PrintsAnswerAndSources(t *testing.T) {
	p := &fakePipeline{results: []models.SearchResult{{Title: "Wiki", URL: "https://w.example"}}}

	out, err := execute(t, p, "", "ask", "--websearch", "what", "is", "it?")
	require.NoError(t, err)

	assert.Equal(t, "what is it?", p.asked.Question)
	assert.True(t, p.asked.WebSearch)
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "- Wiki (https://w.example)")
}

func TestRoot_HasVerboseFlag(t *testing.T) {
	root := NewRootCmd(DefaultFactory)
	flag := root.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer"), 0o644))

	require.NoError(t, writeFileAtomic(path, []byte("new")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomic_FailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "taken")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), nil, 0o644))

	err := writeFileAtomic(target, []byte("doc"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDir())
}
