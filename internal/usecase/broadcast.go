package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"StockQuiz/internal/ports"
)

// BroadcastDeps wires the scheduler driver with the quiz workflow.
type BroadcastDeps struct {
	Driver     ports.Scheduler
	Quiz       ports.QuizGenerator
	Tickers    []string
	Age        int
	Experience int
	Logger     *slog.Logger
}

// Broadcaster generates a quiz for every watchlist ticker on each tick. The
// pipeline publishes each quiz through its notifier.
type Broadcaster struct {
	driver     ports.Scheduler
	quiz       ports.QuizGenerator
	tickers    []string
	age        int
	experience int
	logger     *slog.Logger
}

// NewBroadcaster returns a helper to start/stop recurring quiz runs.
func NewBroadcaster(deps BroadcastDeps) *Broadcaster {
	tickers := make([]string, 0, len(deps.Tickers))
	for _, t := range deps.Tickers {
		if t = strings.TrimSpace(t); t != "" {
			tickers = append(tickers, t)
		}
	}
	return &Broadcaster{
		driver:     deps.Driver,
		quiz:       deps.Quiz,
		tickers:    tickers,
		age:        deps.Age,
		experience: deps.Experience,
		logger:     deps.Logger,
	}
}

// Start registers the watchlist run with the scheduler.
func (b *Broadcaster) Start(ctx context.Context) error {
	if b.driver == nil || b.quiz == nil || len(b.tickers) == 0 {
		return nil
	}

	return b.driver.Start(ctx, func(trigger time.Time) {
		b.RunOnce(ctx, trigger)
	})
}

// RunOnce generates one quiz per ticker, dated by trigger. Failures are logged
// and do not stop the remaining tickers.
func (b *Broadcaster) RunOnce(ctx context.Context, trigger time.Time) int {
	date := trigger.Format("2006-01-02")
	generated := 0
	for _, ticker := range b.tickers {
		if ctx.Err() != nil {
			break
		}
		if _, err := b.quiz.GenerateQuiz(ctx, ticker, date, b.age, b.experience); err != nil {
			if b.logger != nil {
				b.logger.Warn("broadcast quiz", "ticker", ticker, "error", err)
			}
			continue
		}
		generated++
	}
	if b.logger != nil {
		b.logger.Info("broadcast done", "date", date, "generated", generated, "tickers", len(b.tickers))
	}
	return generated
}

// Stop gracefully tears down the underlying scheduler.
func (b *Broadcaster) Stop(ctx context.Context) error {
	if b.driver == nil {
		return nil
	}

	return b.driver.Stop(ctx)
}
