package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

// lineProvider returns one result per non-empty line of the response body.
type lineProvider struct {
	id  models.ProviderID
	url string
}

func (p *lineProvider) ID() models.ProviderID { return p.id }

func (p *lineProvider) NewRequest(ctx context.Context, query string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, p.url+"?q="+query, nil)
}

func (p *lineProvider) Parse(body []byte) ([]models.SearchResult, error) {
	if strings.HasPrefix(string(body), "malformed") {
		return nil, fmt.Errorf("malformed body")
	}
	var out []models.SearchResult
	for _, line := range strings.Split(string(body), "\n") {
		if line != "" {
			out = append(out, models.SearchResult{Title: line, Content: line})
		}
	}
	return out, nil
}

func serve(t *testing.T, status int, body string, delay time.Duration) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func newAggregator(providers ...Provider) *Aggregator {
	return NewAggregator(providers, Options{Timeout: 2 * time.Second, MaxPerProvider: 3, HTTPClient: testClient()})
}

func titles(results []models.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Title
	}
	return out
}

func TestAggregator_MergesInProviderOrder(t *testing.T) {
	// a answers last, the merge must still put it first.
	a := &lineProvider{id: "a", url: serve(t, 200, "a1\na2", 150*time.Millisecond)}
	b := &lineProvider{id: "b", url: serve(t, 200, "b1", 0)}

	results := newAggregator(a, b).Search(context.Background(), "query")

	assert.Equal(t, []string{"a1", "a2", "b1"}, titles(results))
	assert.Equal(t, models.ProviderID("a"), results[0].Source)
	assert.Equal(t, models.ProviderID("b"), results[2].Source)
}

func TestAggregator_OneProviderFails(t *testing.T) {
	ok1 := func() *lineProvider { return &lineProvider{id: "first", url: serve(t, 200, "f1\nf2", 0)} }
	ok2 := func() *lineProvider { return &lineProvider{id: "third", url: serve(t, 200, "t1", 0)} }

	failures := map[string]*lineProvider{
		"status":    {id: "second", url: serve(t, 500, "boom", 0)},
		"malformed": {id: "second", url: serve(t, 200, "malformed", 0)},
		"transport": {id: "second", url: "http://127.0.0.1:1"},
	}
	for name, failing := range failures {
		t.Run(name, func(t *testing.T) {
			results := newAggregator(ok1(), failing, ok2()).Search(context.Background(), "query")
			assert.Equal(t, []string{"f1", "f2", "t1"}, titles(results))
		})
	}
}

func TestAggregator_AllProvidersFail(t *testing.T) {
	a := &lineProvider{id: "a", url: serve(t, 503, "", 0)}
	b := &lineProvider{id: "b", url: serve(t, 200, "malformed", 0)}

	results := newAggregator(a, b).Search(context.Background(), "query")

	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestAggregator_CapsResultsPerProvider(t *testing.T) {
	wiki := NewWikipedia(serve(t, 200, `{"query":{"search":[
		{"title":"One","snippet":"1"},{"title":"Two","snippet":"2"},{"title":"Three","snippet":"3"},
		{"title":"Four","snippet":"4"},{"title":"Five","snippet":"5"}]}}`, 0))
	ddg := NewDuckDuckGo(serve(t, 200, duckduckgoBody, 0))

	results := newAggregator(wiki, ddg).Search(context.Background(), "query")

	assert.Equal(t, []string{"One", "Two", "Three", "The Go Programming Language", "Go - Wikipedia"}, titles(results))
	assert.Equal(t, models.ProviderWikipedia, results[0].Source)
	assert.Equal(t, models.ProviderDuckDuckGo, results[4].Source)
}

func TestAggregator_EmptyQuery(t *testing.T) {
	a := &lineProvider{id: "a", url: serve(t, 200, "a1", 0)}
	assert.Empty(t, newAggregator(a).Search(context.Background(), "   "))
}

func TestAggregator_SendsRandomUserAgent(t *testing.T) {
	var mu sync.Mutex
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.Header.Get("User-Agent"))
		mu.Unlock()
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	newAggregator(&lineProvider{id: "a", url: srv.URL}).Search(context.Background(), "query")

	require.Len(t, agents, 1)
	assert.True(t, slices.Contains(userAgents, agents[0]))
}

func TestAggregator_CancellationReachesEveryProvider(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	cancelled := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			mu.Lock()
			cancelled++
			mu.Unlock()
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	agg := NewAggregator([]Provider{
		&lineProvider{id: "a", url: srv.URL},
		&lineProvider{id: "b", url: srv.URL},
	}, Options{Timeout: time.Minute, HTTPClient: testClient()})

	start := time.Now()
	results := agg.Search(ctx, "query")

	assert.Empty(t, results)
	assert.Less(t, time.Since(start), 5*time.Second)
}
