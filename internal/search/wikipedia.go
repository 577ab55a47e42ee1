package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

const defaultWikipediaEndpoint = "https://en.wikipedia.org/w/api.php"

// Wikipedia queries the MediaWiki search API.
type Wikipedia struct {
	endpoint string
}

func NewWikipedia(endpoint string) *Wikipedia {
	if endpoint == "" {
		endpoint = defaultWikipediaEndpoint
	}
	return &Wikipedia{endpoint: endpoint}
}

func (w *Wikipedia) ID() models.ProviderID { return models.ProviderWikipedia }

func (w *Wikipedia) NewRequest(ctx context.Context, query string) (*http.Request, error) {
	u, err := url.Parse(w.endpoint)
	if err != nil {
		return nil, fmt.Errorf("endpoint: %w", err)
	}
	q := u.Query()
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()
	return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
}

type wikipediaResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// Parse reads query.search[]. Snippets carry search-match markup, which is
// stripped.
func (w *Wikipedia) Parse(body []byte) ([]models.SearchResult, error) {
	var data wikipediaResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	base := w.articleBase()
	results := make([]models.SearchResult, 0, len(data.Query.Search))
	for _, item := range data.Query.Search {
		if item.Title == "" {
			continue
		}
		results = append(results, models.SearchResult{
			Title:   item.Title,
			Content: StripHTML(item.Snippet),
			URL:     base + strings.ReplaceAll(item.Title, " ", "_"),
		})
	}
	return results, nil
}

func (w *Wikipedia) articleBase() string {
	u, err := url.Parse(w.endpoint)
	if err != nil || u.Host == "" {
		return "https://en.wikipedia.org/wiki/"
	}
	return u.Scheme + "://" + u.Host + "/wiki/"
}
