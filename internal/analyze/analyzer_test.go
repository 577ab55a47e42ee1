package analyze

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/research-ai-agent/assistant/internal/llm"
	"github.com/ayush/research-ai-agent/assistant/internal/llm/llmtest"
	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

func newAnalyzer(t *testing.T, gw llm.Gateway) *Analyzer {
	t.Helper()
	a, err := New(gw, Config{ChunkSize: 5000, Overlap: 500, Params: llm.Params{Model: "extract-model", MaxTokens: 256}}, nil)
	require.NoError(t, err)
	return a
}

func TestNew_RejectsBadWindow(t *testing.T) {
	_, err := New(llmtest.New(), Config{ChunkSize: 100, Overlap: 100}, nil)
	assert.Error(t, err)
	_, err = New(llmtest.New(), Config{ChunkSize: 0}, nil)
	assert.Error(t, err)
}

func TestExtractRelevant_SingleChunk(t *testing.T) {
	gw := llmtest.New("  Go was released in 2009  ")
	notes, err := newAnalyzer(t, gw).ExtractRelevant(context.Background(), "history of Go", "find dates", "some text")
	require.NoError(t, err)

	assert.Equal(t, "Go was released in 2009. ", notes)
	calls := gw.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "extract-model", calls[0].Model)
	assert.Equal(t, 256, calls[0].MaxTokens)
	require.Len(t, calls[0].Messages, 2)
	assert.Equal(t, "Objective: history of Go\nCurrent Task: find dates", calls[0].Messages[0].Content)
	assert.Contains(t, calls[0].Prompt(), "Text to analyze: some text.")
}

func TestExtractRelevant_ChunksInOffsetOrder(t *testing.T) {
	text := strings.Repeat("A", 4500) + strings.Repeat("B", 4500) + strings.Repeat("C", 3000)
	require.Len(t, text, 12000)

	gw := llmtest.New("first", "second", "third")
	notes, err := newAnalyzer(t, gw).ExtractRelevant(context.Background(), "obj", "task", text)
	require.NoError(t, err)

	assert.Equal(t, "first. second. third. ", notes)
	calls := gw.Calls()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[0].Prompt(), "Text to analyze: "+strings.Repeat("A", 4500)+strings.Repeat("B", 500)+".")
	assert.Contains(t, calls[1].Prompt(), "Text to analyze: "+strings.Repeat("B", 4500)+strings.Repeat("C", 500)+".")
	assert.Contains(t, calls[2].Prompt(), "Text to analyze: "+strings.Repeat("C", 3000)+".")
}

func TestExtractRelevant_NothingFound(t *testing.T) {
	gw := llmtest.New("", "   ")
	notes, err := newAnalyzer(t, gw).ExtractRelevant(context.Background(), "obj", "task", strings.Repeat("x", 6000))
	require.NoError(t, err)
	assert.Equal(t, NoRelevantInfo, notes)
	assert.Len(t, gw.Calls(), 2)
}

func TestExtractRelevant_EmptyTextRunsNoRequests(t *testing.T) {
	gw := llmtest.New()
	notes, err := newAnalyzer(t, gw).ExtractRelevant(context.Background(), "obj", "task", "")
	require.NoError(t, err)
	assert.Equal(t, NoRelevantInfo, notes)
	assert.Empty(t, gw.Calls())
}

func TestExtractRelevant_MissingContentIsExtractionError(t *testing.T) {
	gw := llmtest.New("kept?").Then(llmtest.Reply{Err: &llm.GatewayError{Op: "/chat/completions", Err: llm.ErrNoContent}})

	notes, err := newAnalyzer(t, gw).ExtractRelevant(context.Background(), "obj", "task", strings.Repeat("x", 9000))

	assert.Empty(t, notes)
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, 1, extErr.Chunk)
	assert.Equal(t, 4500, extErr.Start)
	assert.ErrorIs(t, err, llm.ErrNoContent)
}

func TestExtractRelevant_GatewayErrorPropagatesUnchanged(t *testing.T) {
	gwErr := &llm.GatewayError{Op: "/chat/completions", Status: 401, Err: errors.New("bad key")}
	gw := llmtest.New().Then(llmtest.Reply{Err: gwErr})

	_, err := newAnalyzer(t, gw).ExtractRelevant(context.Background(), "obj", "task", "text")
	assert.Same(t, gwErr, err)
}

func TestExtractRelevant_StopsBetweenChunksOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	gw := llm.GatewayFunc(func(reqCtx context.Context, _ []models.Message, _ string, _ int) (string, error) {
		calls++
		cancel()
		assert.NoError(t, reqCtx.Err(), "in-flight request must not be cancelled")
		return "partial", nil
	})

	notes, err := newAnalyzer(t, gw).ExtractRelevant(ctx, "obj", "task", strings.Repeat("x", 12000))

	assert.Empty(t, notes)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
