package research

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ayush/research-ai-agent/assistant/internal/analyze"
	"github.com/ayush/research-ai-agent/assistant/internal/config"
	"github.com/ayush/research-ai-agent/assistant/internal/llm"
	"github.com/ayush/research-ai-agent/assistant/internal/search"
)

// NewFromConfig builds the full pipeline from configuration. When cache is
// non-nil, search results are cached for cfg.Search.CacheTTL.
func NewFromConfig(cfg *config.Config, cache search.Cache, log *zap.Logger) (*Service, error) {
	gw := llm.NewClient(llm.ClientConfig{
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: cfg.LLM.MaxRetries,
		Logger:     log,
	})

	providers, err := search.NewProviders(cfg.Search.Providers, cfg.Search.Endpoints)
	if err != nil {
		return nil, fmt.Errorf("search providers: %w", err)
	}
	httpClient := &http.Client{Timeout: cfg.Search.Timeout}
	var searcher search.Searcher = search.NewAggregator(providers, search.Options{
		Timeout:        cfg.Search.Timeout,
		MaxPerProvider: cfg.Search.MaxPerProvider,
		HTTPClient:     httpClient,
		Logger:         log,
	})
	if cache != nil {
		searcher = search.NewCachedSearcher(searcher, cache, cfg.Search.CacheTTL, log)
	}

	analyzer, err := analyze.New(gw, analyze.Config{
		ChunkSize: cfg.Chunk.Size,
		Overlap:   cfg.Chunk.Overlap,
		Params:    llm.Params{Model: cfg.LLM.ExtractModel, MaxTokens: cfg.LLM.MaxTokens},
	}, log)
	if err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}

	return NewService(gw, searcher, search.NewPageFetcher(httpClient, cfg.Search.Timeout), analyzer, Config{
		Params:         llm.Params{Model: cfg.LLM.Model, MaxTokens: cfg.LLM.MaxTokens},
		PageFetchLimit: cfg.Search.PageFetchLimit,
	}, log), nil
}
