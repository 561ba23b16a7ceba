package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"StockQuiz/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0"

func newHTTPClient(client *http.Client, timeout time.Duration) *http.Client {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// fetchDocument GETs a page and returns the parsed document with the URL it was
// finally served from (after redirects).
func fetchDocument(ctx context.Context, client *http.Client, pageURL, userAgent string) (*goquery.Document, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: build request: %v", domain.ErrFetch, err)
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: request %s: %w", domain.ErrFetch, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("%w: %s returned %s", domain.ErrFetch, pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read %s: %w", domain.ErrFetch, pageURL, err)
	}

	final := resp.Request.URL
	doc.Url = final
	return doc, final, nil
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
