package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"StockQuiz/internal/domain"
	"StockQuiz/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Collector  ports.NewsCollector
	Prompts    ports.PromptBuilder
	Completion ports.CompletionClient
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline implements the quiz generation workflow.
type Pipeline struct {
	collector  ports.NewsCollector
	prompts    ports.PromptBuilder
	completion ports.CompletionClient
	notifier   ports.Notifier
	logger     *slog.Logger
}

var _ ports.QuizGenerator = (*Pipeline)(nil)

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		collector:  deps.Collector,
		prompts:    deps.Prompts,
		completion: deps.Completion,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
	}
}

// GenerateQuiz collects news for keyword, builds the prompt for the given
// investor profile and returns the generated quiz. The returned result carries
// the collected titles and links even when generation fails afterwards.
func (p *Pipeline) GenerateQuiz(ctx context.Context, keyword, date string, age, experience int) (domain.QuizResult, error) {
	profile := domain.UserProfile{
		InvestmentDate:  strings.TrimSpace(date),
		Age:             age,
		ExperienceYears: experience,
		Ticker:          strings.TrimSpace(keyword),
	}
	if err := profile.Validate(); err != nil {
		return domain.QuizResult{}, err
	}

	if p.collector == nil || p.prompts == nil {
		return domain.QuizResult{}, fmt.Errorf("%w: pipeline needs a collector and a prompt builder", domain.ErrNotConfigured)
	}

	collection, err := p.collector.Collect(ctx, profile.Ticker)
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("collect news: %w", err)
	}

	result := domain.QuizResult{
		Titles:  collection.Titles,
		Links:   collection.Links,
		Preview: domain.FirstSentence(collection.Contents),
	}
	if collection.Len() == 0 {
		p.info("no articles collected", "keyword", profile.Ticker)
		return result, domain.ErrEmptyResult
	}

	p.info("news collected", "keyword", profile.Ticker, "articles", collection.Len())

	request, err := p.prompts.Build(collection.Contents, profile)
	if err != nil {
		return result, fmt.Errorf("build prompt: %w", err)
	}

	if p.completion == nil {
		return result, fmt.Errorf("%w: completion client", domain.ErrNotConfigured)
	}

	answer, err := p.completion.Complete(ctx, request)
	if err != nil {
		return result, fmt.Errorf("generate quiz: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return result, fmt.Errorf("generate quiz: blank answer: %w", domain.ErrCompletionEmpty)
	}
	result.Text = answer

	p.info("quiz generated", "keyword", profile.Ticker, "chars", len(answer))

	if p.notifier != nil {
		if err := p.notifier.PublishQuiz(ctx, profile.Ticker, answer); err != nil && p.logger != nil {
			p.logger.Warn("publish quiz", "keyword", profile.Ticker, "error", err)
		}
	}

	return result, nil
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
