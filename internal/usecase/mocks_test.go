package usecase

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/stretchr/testify/mock"

	"StockQuiz/internal/domain"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, keyword string, recency domain.Recency) (iter.Seq[domain.ArticleSummary], error) {
	args := m.Called(ctx, keyword, recency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return slices.Values(args.Get(0).([]domain.ArticleSummary)), args.Error(1)
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, url string) (domain.Article, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(domain.Article), args.Error(1)
}

type MockCollector struct {
	mock.Mock
}

func (m *MockCollector) Collect(ctx context.Context, keyword string) (domain.Collection, error) {
	args := m.Called(ctx, keyword)
	return args.Get(0).(domain.Collection), args.Error(1)
}

type MockCompletion struct {
	mock.Mock
}

func (m *MockCompletion) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PublishQuiz(ctx context.Context, keyword, quiz string) error {
	args := m.Called(ctx, keyword, quiz)
	return args.Error(0)
}

func summary(links ...string) domain.ArticleSummary {
	return domain.ArticleSummary{InfoLinks: links}
}

type MockQuizGenerator struct {
	mock.Mock
}

func (m *MockQuizGenerator) GenerateQuiz(ctx context.Context, keyword, date string, age, experience int) (domain.QuizResult, error) {
	args := m.Called(ctx, keyword, date, age, experience)
	return args.Get(0).(domain.QuizResult), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Start(ctx context.Context, job func(time.Time)) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockScheduler) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
