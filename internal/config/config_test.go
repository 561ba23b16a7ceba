package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(clovaAPIKeyEnv, "")

	cfg := Load()

	if cfg.Collector.MaxArticles != 3 {
		t.Fatalf("expected default cap 3, got %d", cfg.Collector.MaxArticles)
	}
	if cfg.Collector.Delay != 300*time.Millisecond {
		t.Fatalf("unexpected delay: %v", cfg.Collector.Delay)
	}
	if cfg.Collector.Suffix() != " 주가" {
		t.Fatalf("unexpected keyword suffix: %q", cfg.Collector.Suffix())
	}
	if cfg.Completion.Aggregation != AggregateLast {
		t.Fatalf("unexpected aggregation: %s", cfg.Completion.Aggregation)
	}
	if got := cfg.Completion.Endpoint(); got != "https://clovastudio.stream.ntruss.com/testapp/v1/chat-completions/HCX-003" {
		t.Fatalf("unexpected endpoint: %s", got)
	}
	s := cfg.Completion.Sampling
	if s.TopP != 0.8 || s.MaxTokens != 256 || s.Temperature != 0.5 || s.RepeatPenalty != 5.0 {
		t.Fatalf("unexpected sampling defaults: %+v", s)
	}
	if s.IncludeAIFilters == nil || !*s.IncludeAIFilters {
		t.Fatal("expected includeAiFilters to default to true")
	}
	if cfg.Completion.APIKey != "" {
		t.Fatal("credentials must not have a default value")
	}
	if cfg.Broadcast.Enabled() {
		t.Fatal("broadcast must be off by default")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
logging:
  level: debug
collector:
  maxArticles: 5
  delay: 1s
  workers: 2
  keywordSuffix: ""
completion:
  apiKey: from-file
  aggregation: CONCAT
  sampling:
    maxTokens: 512
    includeAiFilters: false
server:
  rateLimit: 2
  trustProxy: true
broadcast:
  interval: 24h
  tickers: ["삼성전자", "카카오"]
  age: 35
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(clovaAPIKeyEnv, "from-env")
	t.Setenv(clovaGatewayKeyEnv, "gw")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected level: %s", cfg.Logging.Level)
	}
	if cfg.Collector.MaxArticles != 5 || cfg.Collector.Workers != 2 || cfg.Collector.Delay != time.Second {
		t.Fatalf("unexpected collector config: %+v", cfg.Collector)
	}
	if cfg.Collector.Suffix() != "" {
		t.Fatalf("expected explicit empty suffix, got %q", cfg.Collector.Suffix())
	}
	if cfg.Completion.APIKey != "from-env" {
		t.Fatalf("env must win over file, got %s", cfg.Completion.APIKey)
	}
	if cfg.Completion.GatewayKey != "gw" {
		t.Fatalf("unexpected gateway key: %s", cfg.Completion.GatewayKey)
	}
	if cfg.Completion.Aggregation != AggregateConcat {
		t.Fatalf("unexpected aggregation: %s", cfg.Completion.Aggregation)
	}
	if cfg.Completion.Sampling.MaxTokens != 512 || cfg.Completion.Sampling.TopP != 0.8 {
		t.Fatalf("unexpected sampling: %+v", cfg.Completion.Sampling)
	}
	if *cfg.Completion.Sampling.IncludeAIFilters {
		t.Fatal("expected includeAiFilters to be overridden to false")
	}
	if cfg.Server.RateLimit != 2 || cfg.Server.Burst != 3 || cfg.Server.Addr != ":8501" || !cfg.Server.TrustProxy {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if !cfg.Broadcast.Enabled() || cfg.Broadcast.Age != 35 || cfg.Broadcast.Experience != 1 || len(cfg.Broadcast.Tickers) != 2 {
		t.Fatalf("unexpected broadcast config: %+v", cfg.Broadcast)
	}
}

func TestNormalizeUnknownAggregation(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Completion.Aggregation = "median"
	cfg.Collector.Workers = 0
	cfg.normalize()

	if cfg.Completion.Aggregation != AggregateLast {
		t.Fatalf("unexpected aggregation: %s", cfg.Completion.Aggregation)
	}
	if cfg.Collector.Workers != 1 {
		t.Fatalf("expected workers clamped to 1, got %d", cfg.Collector.Workers)
	}
}
