package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

const defaultDuckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the HTML-only results page.
type DuckDuckGo struct {
	endpoint string
}

func NewDuckDuckGo(endpoint string) *DuckDuckGo {
	if endpoint == "" {
		endpoint = defaultDuckDuckGoEndpoint
	}
	return &DuckDuckGo{endpoint: endpoint}
}

func (d *DuckDuckGo) ID() models.ProviderID { return models.ProviderDuckDuckGo }

func (d *DuckDuckGo) NewRequest(ctx context.Context, query string) (*http.Request, error) {
	u, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()
	return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
}

// Parse walks the .result__body blocks. Blocks without both a title and a
// snippet are skipped.
func (d *DuckDuckGo) Parse(body []byte) ([]models.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var results []models.SearchResult
	doc.Find(".result__body").Each(func(_ int, s *goquery.Selection) {
		title := collapse(s.Find(".result__title").First().Text())
		snippet := collapse(s.Find(".result__snippet").First().Text())
		if title == "" || snippet == "" {
			return
		}
		href, _ := s.Find("a.result__url").First().Attr("href")
		if href == "" {
			href, _ = s.Find("a.result__a").First().Attr("href")
		}
		results = append(results, models.SearchResult{
			Title:   title,
			Content: snippet,
			URL:     unwrapRedirect(href),
		})
	})
	return results, nil
}

// unwrapRedirect resolves //duckduckgo.com/l/?uddg=<target> links to the target.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
