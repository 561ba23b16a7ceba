package ports

import (
	"context"
	"iter"
	"time"

	"StockQuiz/internal/domain"
)

// ArticleSearcher queries the news search provider for a keyword.
type ArticleSearcher interface {
	Search(ctx context.Context, keyword string, recency domain.Recency) (iter.Seq[domain.ArticleSummary], error)
}

// ArticleExtractor fetches one article page and extracts its title and body.
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) (domain.Article, error)
}

// NewsCollector turns a keyword into index-aligned article titles, bodies and links.
type NewsCollector interface {
	Collect(ctx context.Context, keyword string) (domain.Collection, error)
}

// PromptBuilder maps collected bodies and the investor profile to a chat request.
type PromptBuilder interface {
	Build(contents []string, profile domain.UserProfile) (domain.CompletionRequest, error)
}

// CompletionClient runs a streamed chat completion and returns the reassembled answer.
type CompletionClient interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// Notifier delivers generated quizzes to an outbound channel (Telegram, etc.).
type Notifier interface {
	PublishQuiz(ctx context.Context, keyword, quiz string) error
}

// QuizGenerator is the inbound port the UI drives.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, keyword, date string, age, experience int) (domain.QuizResult, error)
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
