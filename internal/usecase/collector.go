package usecase

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"StockQuiz/internal/domain"
	"StockQuiz/internal/ports"
)

// CollectorDeps wires the search and extraction adapters with collection limits.
type CollectorDeps struct {
	Searcher  ports.ArticleSearcher
	Extractor ports.ArticleExtractor
	Logger    *slog.Logger

	// MaxArticles caps extraction attempts per call; <= 0 means unbounded.
	MaxArticles int
	// Delay is the pause after each sequential extraction; with several
	// workers it spaces request starts instead.
	Delay time.Duration
	// Workers bounds concurrent extractions; 1 keeps the fetches sequential.
	Workers       int
	Recency       domain.Recency
	KeywordSuffix string
}

// Collector implements ports.NewsCollector.
type Collector struct {
	searcher    ports.ArticleSearcher
	extractor   ports.ArticleExtractor
	logger      *slog.Logger
	maxArticles int
	delay       time.Duration
	workers     int
	recency     domain.Recency
	suffix      string
}

var _ ports.NewsCollector = (*Collector)(nil)

// NewCollector constructs the collection component.
func NewCollector(deps CollectorDeps) *Collector {
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	return &Collector{
		searcher:    deps.Searcher,
		extractor:   deps.Extractor,
		logger:      deps.Logger,
		maxArticles: deps.MaxArticles,
		delay:       deps.Delay,
		workers:     workers,
		recency:     deps.Recency,
		suffix:      deps.KeywordSuffix,
	}
}

// Collect searches for keyword and extracts the linked articles in search order.
// Per-article failures are skipped; only the search itself fails the call.
func (c *Collector) Collect(ctx context.Context, keyword string) (domain.Collection, error) {
	if c.searcher == nil || c.extractor == nil {
		return domain.Collection{}, fmt.Errorf("%w: collector needs a searcher and an extractor", domain.ErrNotConfigured)
	}

	query := strings.TrimSpace(keyword) + c.suffix
	results, err := c.searcher.Search(ctx, query, c.recency)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("search %q: %w", query, err)
	}

	links := c.detailLinks(results)
	c.debug("collect", "query", query, "links", len(links), "workers", c.workers)

	extractions := c.extractAll(ctx, links)
	if err := ctx.Err(); err != nil {
		return domain.Collection{}, err
	}

	collection := domain.NewCollection(len(extractions))
	for i, ex := range extractions {
		if !ex.OK() {
			c.warn("skip article", "url", links[i], "error", ex.Err)
			continue
		}
		collection.Add(ex.Article)
	}

	c.debug("collect done", "query", query, "articles", collection.Len())
	return collection, nil
}

// detailLinks walks the lazy search results until the cap is reached, skipping
// groups without a permalink.
func (c *Collector) detailLinks(results iter.Seq[domain.ArticleSummary]) []string {
	var links []string
	for summary := range results {
		if c.maxArticles > 0 && len(links) >= c.maxArticles {
			break
		}
		link, ok := summary.DetailLink()
		if !ok {
			continue
		}
		links = append(links, link)
	}
	return links
}

// extractAll extracts every link. Results are stored by index so the output
// keeps search order whatever the worker count.
func (c *Collector) extractAll(ctx context.Context, links []string) []domain.Extraction {
	extractions := make([]domain.Extraction, len(links))
	if len(links) == 0 {
		return extractions
	}
	if c.workers == 1 {
		return c.extractSequential(ctx, links, extractions)
	}

	// Parallel workers are paced start-to-start by a per-call limiter.
	limiter := rate.NewLimiter(rate.Every(c.delay), 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, link := range links {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				extractions[i] = domain.Extraction{Err: err}
				return nil
			}
			article, err := c.extractor.Extract(gctx, link)
			extractions[i] = domain.Extraction{Article: article, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return extractions
}

// extractSequential pauses for the configured delay after each extraction
// finishes, so a slow page never shortens the gap before the next request.
func (c *Collector) extractSequential(ctx context.Context, links []string, extractions []domain.Extraction) []domain.Extraction {
	for i, link := range links {
		if i > 0 {
			if err := pause(ctx, c.delay); err != nil {
				for j := i; j < len(links); j++ {
					extractions[j] = domain.Extraction{Err: err}
				}
				return extractions
			}
		}
		article, err := c.extractor.Extract(ctx, link)
		extractions[i] = domain.Extraction{Article: article, Err: err}
	}
	return extractions
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Collector) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Collector) warn(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
