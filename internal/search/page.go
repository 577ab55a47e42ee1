package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageFetcher downloads a result page and reduces it to readable text.
type PageFetcher struct {
	client  *http.Client
	timeout time.Duration
}

func NewPageFetcher(client *http.Client, timeout time.Duration) *PageFetcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PageFetcher{client: client, timeout: timeout}
}

// FetchText returns the page's body text without scripts, styles or
// navigation chrome, whitespace collapsed.
func (f *PageFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	body, err := getBody(f.client, req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	text := collapse(doc.Find("body").Text())
	if text == "" {
		text = collapse(doc.Text())
	}
	return text, nil
}
