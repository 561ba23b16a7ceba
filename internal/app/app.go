package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"StockQuiz/internal/config"
	"StockQuiz/internal/domain"
	"StockQuiz/internal/infrastructure/llm"
	"StockQuiz/internal/infrastructure/parser"
	"StockQuiz/internal/infrastructure/scheduler"
	"StockQuiz/internal/infrastructure/telegram"
	"StockQuiz/internal/infrastructure/web"
	"StockQuiz/internal/logging"
	"StockQuiz/internal/ports"
	"StockQuiz/internal/scanner"
	"StockQuiz/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	pipeline    *usecase.Pipeline
	server      *web.Server
	broadcaster *usecase.Broadcaster
}

// New builds the application from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	searcher := parser.NewNaverSearcher(nil, cfg.Search, cfg.Extractor.UserAgent, baseLogger.With("component", "search"))
	extractor := parser.NewArticleExtractor(nil, scanner.DefaultRegistry(), cfg.Extractor, baseLogger.With("component", "extractor"))

	collector := usecase.NewCollector(usecase.CollectorDeps{
		Searcher:      searcher,
		Extractor:     extractor,
		Logger:        baseLogger.With("component", "collector"),
		MaxArticles:   cfg.Collector.MaxArticles,
		Delay:         cfg.Collector.Delay,
		Workers:       cfg.Collector.Workers,
		Recency:       domain.ParseRecency(cfg.Search.Recency),
		KeywordSuffix: cfg.Collector.Suffix(),
	})

	var completion ports.CompletionClient
	if cfg.Completion.APIKey != "" && cfg.Completion.GatewayKey != "" {
		completion = llm.NewClovaClient(cfg.Completion, nil, baseLogger.With("component", "completion"))
	} else {
		baseLogger.Warn("completion credentials missing; quiz generation is disabled")
	}

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram, nil); tg.Configured() {
		notifier = tg
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Collector:  collector,
		Prompts:    usecase.NewQuizPromptBuilder(cfg.Prompt, cfg.Completion.Sampling),
		Completion: completion,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	server := web.NewServer(pipeline, cfg.Server, baseLogger.With("component", "web"))

	application := &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline, server: server}

	switch {
	case !cfg.Broadcast.Enabled():
	case notifier == nil:
		baseLogger.Warn("broadcast configured without a notifier; schedule ignored")
	default:
		application.broadcaster = usecase.NewBroadcaster(usecase.BroadcastDeps{
			Driver:     scheduler.NewIntervalScheduler(cfg.Broadcast.Interval, cfg.Broadcast.RunOnStart),
			Quiz:       pipeline,
			Tickers:    cfg.Broadcast.Tickers,
			Age:        cfg.Broadcast.Age,
			Experience: cfg.Broadcast.Experience,
			Logger:     baseLogger.With("component", "broadcast"),
		})
	}

	return application
}

// Pipeline exposes the quiz workflow for callers that bypass the UI.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Run serves the UI (and the broadcast schedule, if any) until ctx is
// cancelled, then drains in-flight requests.
func (a *Application) Run(ctx context.Context) error {
	if a.broadcaster != nil {
		if err := a.broadcaster.Start(ctx); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.broadcaster != nil {
		if err := a.broadcaster.Stop(shutdownCtx); err != nil {
			a.logger.Warn("stop broadcast", "error", err)
		}
	}

	a.logger.Info("shutting down web server")
	if err := a.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errCh
}
