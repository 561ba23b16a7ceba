package scanner

import (
	"fmt"

	"StockQuiz/internal/domain"
)

// Rule is the DOM query pair used to extract one article category.
type Rule struct {
	Category domain.Category
	Title    string
	Body     string
	// Strip lists selectors removed from the body container before reading its text.
	Strip []string
}

// Registry keeps a mapping from article categories to their extraction rules.
type Registry struct {
	rules map[domain.Category]Rule
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: map[domain.Category]Rule{}}
}

// DefaultRegistry returns the rules for the three known news page layouts.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(Rule{
		Category: domain.CategoryEntertainment,
		Title:    ".end_tit",
		Body:     "#articeBody",
	})
	// Sports pages embed ad and widget markup as divs and paragraphs inside the body.
	reg.Register(Rule{
		Category: domain.CategorySports,
		Title:    "h4.title",
		Body:     "#newsEndContents",
		Strip:    []string{"div", "p"},
	})
	reg.Register(Rule{
		Category: domain.CategoryGeneral,
		Title:    ".media_end_head_headline",
		Body:     "#dic_area",
	})
	return reg
}

// Register adds or replaces a rule.
func (r *Registry) Register(rule Rule) {
	if r.rules == nil {
		r.rules = map[domain.Category]Rule{}
	}
	r.rules[rule.Category] = rule
}

// Resolve returns the rule for a category or an error if it is absent.
func (r *Registry) Resolve(category domain.Category) (Rule, error) {
	if rule, ok := r.rules[category]; ok {
		return rule, nil
	}
	return Rule{}, fmt.Errorf("no extraction rule registered for category %s", category)
}
