package domain

import "strings"

// Category selects the extraction rule for an article page.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryEntertainment Category = "entertainment"
	CategorySports        Category = "sports"
)

// Classify maps the resolved article URL (after redirects) to its category.
func Classify(resolvedURL string) Category {
	switch {
	case strings.Contains(resolvedURL, "entertain"):
		return CategoryEntertainment
	case strings.Contains(resolvedURL, "sports"):
		return CategorySports
	default:
		return CategoryGeneral
	}
}

// ArticleSummary is one search-result group with its info anchors in document order.
type ArticleSummary struct {
	InfoLinks []string
}

// DetailLink returns the article permalink. The first info anchor of a group is
// the publisher, the second one points at the article itself.
func (s ArticleSummary) DetailLink() (string, bool) {
	if len(s.InfoLinks) < 2 {
		return "", false
	}
	return s.InfoLinks[1], true
}

// Article is the extracted text of a single news page.
type Article struct {
	Title string
	Body  string
	URL   string
}

// Extraction is the per-item outcome of extracting one search result.
type Extraction struct {
	Article Article
	Err     error
}

// OK reports whether the extraction produced a usable article.
func (e Extraction) OK() bool {
	return e.Err == nil
}

// Collection holds index-aligned titles, bodies and links of collected articles.
type Collection struct {
	Titles   []string
	Contents []string
	Links    []string
}

// Add appends one article to all three sequences.
func (c *Collection) Add(article Article) {
	c.Titles = append(c.Titles, article.Title)
	c.Contents = append(c.Contents, article.Body)
	c.Links = append(c.Links, article.URL)
}

// Len returns the number of collected articles.
func (c Collection) Len() int {
	return len(c.Contents)
}

// Recency narrows search results to a recent period.
type Recency int

const (
	RecencyAny Recency = iota
	RecencyHour
	RecencyDay
	RecencyWeek
	RecencyMonth
)

// ParseRecency accepts the config spellings ("", "any", "1h", "1d", "1w", "1m").
func ParseRecency(value string) Recency {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1h", "hour":
		return RecencyHour
	case "1d", "day":
		return RecencyDay
	case "1w", "week":
		return RecencyWeek
	case "1m", "month":
		return RecencyMonth
	default:
		return RecencyAny
	}
}

// NewCollection returns a collection with empty, non-nil sequences.
func NewCollection(capacity int) Collection {
	return Collection{
		Titles:   make([]string, 0, capacity),
		Contents: make([]string, 0, capacity),
		Links:    make([]string, 0, capacity),
	}
}
