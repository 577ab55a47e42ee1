// Package search fans a query out to a fixed, ordered set of information
// providers and merges their normalized results.
package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

// Provider is one information source. NewRequest builds the outbound request
// for a query and Parse turns the raw response body into results in the
// provider's own relevance order.
type Provider interface {
	ID() models.ProviderID
	NewRequest(ctx context.Context, query string) (*http.Request, error)
	Parse(body []byte) ([]models.SearchResult, error)
}

// ProviderError is a fetch or parse failure of a single provider. The
// aggregator logs it and carries on with the other providers.
type ProviderError struct {
	Provider models.ProviderID
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("search provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

type registration struct {
	build     func(endpoint string) Provider
	perMinute int
}

var registry = map[models.ProviderID]registration{
	models.ProviderWikipedia:  {build: func(ep string) Provider { return NewWikipedia(ep) }, perMinute: 50},
	models.ProviderDuckDuckGo: {build: func(ep string) Provider { return NewDuckDuckGo(ep) }, perMinute: 100},
}

// NewProviders builds providers in the given order. endpoints overrides a
// provider's default endpoint when set.
func NewProviders(ids []string, endpoints map[string]string) ([]Provider, error) {
	providers := make([]Provider, 0, len(ids))
	for _, raw := range ids {
		id := models.ProviderID(strings.ToLower(strings.TrimSpace(raw)))
		reg, ok := registry[id]
		if !ok {
			return nil, fmt.Errorf("unknown search provider %q", raw)
		}
		providers = append(providers, reg.build(endpoints[string(id)]))
	}
	return providers, nil
}

// limiterFor returns the request budget registered for a provider. Providers
// outside the registry are not throttled.
func limiterFor(id models.ProviderID) *rate.Limiter {
	reg, ok := registry[id]
	if !ok || reg.perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(reg.perMinute)), 5)
}
