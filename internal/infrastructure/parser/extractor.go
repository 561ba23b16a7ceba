package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"StockQuiz/internal/config"
	"StockQuiz/internal/domain"
	"StockQuiz/internal/ports"
	"StockQuiz/internal/scanner"
)

// ArticleExtractor fetches article pages and applies the rule for their category.
type ArticleExtractor struct {
	client    *http.Client
	registry  *scanner.Registry
	userAgent string
	logger    *slog.Logger
}

var _ ports.ArticleExtractor = (*ArticleExtractor)(nil)

// NewArticleExtractor wires an HTTP client and rule registry; nil values get defaults.
func NewArticleExtractor(client *http.Client, reg *scanner.Registry, cfg config.ExtractorConfig, log *slog.Logger) *ArticleExtractor {
	if reg == nil {
		reg = scanner.DefaultRegistry()
	}
	return &ArticleExtractor{
		client:    newHTTPClient(client, cfg.Timeout),
		registry:  reg,
		userAgent: cfg.UserAgent,
		logger:    log,
	}
}

// Extract downloads the article and returns its trimmed title and body.
func (e *ArticleExtractor) Extract(ctx context.Context, articleURL string) (domain.Article, error) {
	doc, final, err := fetchDocument(ctx, e.client, articleURL, e.userAgent)
	if err != nil {
		return domain.Article{}, err
	}

	category := domain.Classify(final.String())
	rule, err := e.registry.Resolve(category)
	if err != nil {
		return domain.Article{}, fmt.Errorf("%w: %s: %v", domain.ErrExtraction, articleURL, err)
	}

	if e.logger != nil {
		e.logger.Debug("extract article", "url", articleURL, "resolved", final.String(), "category", category)
	}

	return extractArticle(doc, rule, articleURL)
}

func extractArticle(doc *goquery.Document, rule scanner.Rule, articleURL string) (domain.Article, error) {
	title := doc.Find(rule.Title).First()
	if title.Length() == 0 {
		return domain.Article{}, fmt.Errorf("%w: %s: title selector %q matched nothing", domain.ErrExtraction, articleURL, rule.Title)
	}

	body := doc.Find(rule.Body).First()
	if body.Length() == 0 {
		return domain.Article{}, fmt.Errorf("%w: %s: body selector %q matched nothing", domain.ErrExtraction, articleURL, rule.Body)
	}

	if len(rule.Strip) > 0 {
		body.Find(strings.Join(rule.Strip, ", ")).Remove()
	}

	article := domain.Article{
		Title: text(title),
		Body:  text(body),
		URL:   articleURL,
	}
	if article.Body == "" {
		return domain.Article{}, fmt.Errorf("%w: %s: empty body", domain.ErrExtraction, articleURL)
	}

	return article, nil
}
