package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 5000, cfg.Chunk.Size)
	assert.Equal(t, 500, cfg.Chunk.Overlap)
	assert.Equal(t, []string{"wikipedia", "duckduckgo"}, cfg.Search.Providers)
	assert.Equal(t, 3, cfg.Search.MaxPerProvider)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "1000")
	t.Setenv("CHUNK_OVERLAP", "100")
	t.Setenv("SEARCH_PROVIDERS", " duckduckgo , wikipedia ,")
	t.Setenv("SEARCH_TIMEOUT", "2s")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LLM_MAX_RETRIES", "not-a-number")

	cfg := Load()

	assert.Equal(t, 1000, cfg.Chunk.Size)
	assert.Equal(t, 100, cfg.Chunk.Overlap)
	assert.Equal(t, []string{"duckduckgo", "wikipedia"}, cfg.Search.Providers)
	assert.Equal(t, 2*time.Second, cfg.Search.Timeout)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
}

func TestValidate_RejectsOverlapNotBelowChunkSize(t *testing.T) {
	cfg := Load()
	cfg.Chunk.Size = 500
	cfg.Chunk.Overlap = 500

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHUNK_OVERLAP")
}
