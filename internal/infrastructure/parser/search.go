package parser

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"

	"StockQuiz/internal/config"
	"StockQuiz/internal/domain"
	"StockQuiz/internal/ports"
)

// recencyCodes maps recency filters to the provider's "pd" parameter.
var recencyCodes = map[domain.Recency]string{
	domain.RecencyHour:  "7",
	domain.RecencyDay:   "4",
	domain.RecencyWeek:  "1",
	domain.RecencyMonth: "2",
}

// NaverSearcher queries the news search page and yields result groups.
type NaverSearcher struct {
	client    *http.Client
	cfg       config.SearchConfig
	userAgent string
	logger    *slog.Logger
}

var _ ports.ArticleSearcher = (*NaverSearcher)(nil)

// NewNaverSearcher wires an HTTP client; a nil client gets one with cfg.Timeout.
func NewNaverSearcher(client *http.Client, cfg config.SearchConfig, userAgent string, log *slog.Logger) *NaverSearcher {
	return &NaverSearcher{
		client:    newHTTPClient(client, cfg.Timeout),
		cfg:       cfg,
		userAgent: userAgent,
		logger:    log,
	}
}

// Search fetches the result page for keyword. The returned sequence reads each
// group's anchors only when the consumer reaches it and can be ranged once.
func (s *NaverSearcher) Search(ctx context.Context, keyword string, recency domain.Recency) (iter.Seq[domain.ArticleSummary], error) {
	pageURL, err := buildSearchURL(s.cfg.Endpoint, keyword, s.cfg.Sort, recency)
	if err != nil {
		return nil, err
	}

	s.debug("search", "url", pageURL)

	doc, base, err := fetchDocument(ctx, s.client, pageURL, s.userAgent)
	if err != nil {
		return nil, err
	}

	groups := doc.Find(s.cfg.GroupSelector)
	if groups.Length() == 0 {
		if s.cfg.NoResultSelector != "" && doc.Find(s.cfg.NoResultSelector).Length() > 0 {
			s.debug("search returned no results", "keyword", keyword)
			return empty, nil
		}
		if doc.Find(s.cfg.ContainerSelector).Length() == 0 {
			return nil, fmt.Errorf("%w: %q not found on %s", domain.ErrParse, s.cfg.ContainerSelector, pageURL)
		}
		return empty, nil
	}

	s.debug("search groups found", "keyword", keyword, "count", groups.Length())
	return summaries(groups, s.cfg.LinkSelector, base), nil
}

func summaries(groups *goquery.Selection, linkSelector string, base *url.URL) iter.Seq[domain.ArticleSummary] {
	var consumed atomic.Bool
	return func(yield func(domain.ArticleSummary) bool) {
		if !consumed.CompareAndSwap(false, true) {
			return
		}
		for i := range groups.Length() {
			group := groups.Eq(i)
			summary := domain.ArticleSummary{}
			group.Find(linkSelector).Each(func(_ int, a *goquery.Selection) {
				if href, ok := a.Attr("href"); ok {
					summary.InfoLinks = append(summary.InfoLinks, resolveLink(base, href))
				}
			})
			if !yield(summary) {
				return
			}
		}
	}
}

func empty(func(domain.ArticleSummary) bool) {}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func buildSearchURL(endpoint, keyword, sort string, recency domain.Recency) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid search endpoint %s: %w", endpoint, err)
	}

	query := parsed.Query()
	query.Set("where", "news")
	query.Set("sm", "tab_jum")
	query.Set("query", keyword)
	if sort != "" {
		query.Set("sort", sort)
	}
	if code, ok := recencyCodes[recency]; ok {
		query.Set("pd", code)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (s *NaverSearcher) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
