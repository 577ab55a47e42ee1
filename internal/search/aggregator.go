package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ayush/research-ai-agent/assistant/internal/logging"
	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

const maxBodyBytes = 1 << 20

// Searcher returns normalized results for a query. An empty slice means no
// information was found; it is never an error.
type Searcher interface {
	Search(ctx context.Context, query string) []models.SearchResult
}

// Options tunes an Aggregator. Zero values pick the defaults.
type Options struct {
	Timeout        time.Duration
	MaxPerProvider int
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

// Aggregator queries every provider concurrently and concatenates their
// results in provider order.
type Aggregator struct {
	providers      []Provider
	limiters       []*rate.Limiter
	timeout        time.Duration
	maxPerProvider int
	httpClient     *http.Client
	log            *zap.Logger
}

var _ Searcher = (*Aggregator)(nil)

func NewAggregator(providers []Provider, opts Options) *Aggregator {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxPerProvider <= 0 {
		opts.MaxPerProvider = 3
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	limiters := make([]*rate.Limiter, len(providers))
	for i, p := range providers {
		limiters[i] = limiterFor(p.ID())
	}
	return &Aggregator{
		providers:      providers,
		limiters:       limiters,
		timeout:        opts.Timeout,
		maxPerProvider: opts.MaxPerProvider,
		httpClient:     opts.HTTPClient,
		log:            logging.OrNop(opts.Logger),
	}
}

// Search never fails: a provider that errors contributes no results. Each
// goroutine writes only its own slot of batches, so the merge after Wait
// needs no locking and its order does not depend on completion order.
func (a *Aggregator) Search(ctx context.Context, query string) []models.SearchResult {
	query = strings.TrimSpace(query)
	merged := []models.SearchResult{}
	if query == "" {
		a.log.Warn("search skipped: empty query")
		return merged
	}

	batches := make([][]models.SearchResult, len(a.providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range a.providers {
		g.Go(func() error {
			results, err := a.fetch(gctx, i, p, query)
			if err != nil {
				a.log.Warn("search provider failed",
					zap.String("provider", string(p.ID())),
					zap.String("query", query),
					zap.Error(err))
				return nil
			}
			batches[i] = results
			return nil
		})
	}
	_ = g.Wait()

	for _, batch := range batches {
		merged = append(merged, batch...)
	}
	a.log.Debug("search completed", zap.String("query", query), zap.Int("results", len(merged)))
	return merged
}

func (a *Aggregator) fetch(ctx context.Context, i int, p Provider, query string) ([]models.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.limiters[i].Wait(ctx); err != nil {
		return nil, &ProviderError{Provider: p.ID(), Err: fmt.Errorf("rate limit: %w", err)}
	}

	req, err := p.NewRequest(ctx, query)
	if err != nil {
		return nil, &ProviderError{Provider: p.ID(), Err: err}
	}
	body, err := getBody(a.httpClient, req)
	if err != nil {
		return nil, &ProviderError{Provider: p.ID(), Err: err}
	}

	results, err := p.Parse(body)
	if err != nil {
		return nil, &ProviderError{Provider: p.ID(), Err: err}
	}
	if len(results) > a.maxPerProvider {
		results = results[:a.maxPerProvider]
	}
	for j := range results {
		results[j].Source = p.ID()
	}
	return results, nil
}

// getBody performs req with browser headers and returns at most 1 MiB of a
// 2xx response body.
func getBody(client *http.Client, req *http.Request) ([]byte, error) {
	setBrowserHeaders(req)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s returned %d", req.URL.Redacted(), resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
