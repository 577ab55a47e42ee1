package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failGet bool
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, false, errors.New("connection refused")
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

type countingSearcher struct {
	calls   int
	results []models.SearchResult
}

func (c *countingSearcher) Search(context.Context, string) []models.SearchResult {
	c.calls++
	return c.results
}

func TestCachedSearcher_HitAvoidsProviders(t *testing.T) {
	next := &countingSearcher{results: []models.SearchResult{{Title: "t", Content: "c", URL: "u", Source: models.ProviderWikipedia}}}
	cache := &memCache{entries: map[string][]byte{}}
	s := NewCachedSearcher(next, cache, time.Hour, nil)

	first := s.Search(context.Background(), "Golang")
	second := s.Search(context.Background(), "  golang ")

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
}

func TestCachedSearcher_EmptyResultsNotCached(t *testing.T) {
	next := &countingSearcher{results: []models.SearchResult{}}
	cache := &memCache{entries: map[string][]byte{}}
	s := NewCachedSearcher(next, cache, time.Hour, nil)

	s.Search(context.Background(), "nothing")
	s.Search(context.Background(), "nothing")

	assert.Equal(t, 2, next.calls)
	assert.Empty(t, cache.entries)
}

func TestCachedSearcher_CacheErrorFallsThrough(t *testing.T) {
	next := &countingSearcher{results: []models.SearchResult{{Title: "t"}}}
	s := NewCachedSearcher(next, &memCache{entries: map[string][]byte{}, failGet: true}, time.Hour, nil)

	results := s.Search(context.Background(), "q")
	require.Len(t, results, 1)
	assert.Equal(t, 1, next.calls)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey("Go"), CacheKey(" go "))
	assert.NotEqual(t, CacheKey("go"), CacheKey("rust"))
	assert.Regexp(t, `^search:[0-9a-f]{64}$`, CacheKey("go"))
}
