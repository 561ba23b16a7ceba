package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "STOCKQUIZ_CONFIG"
	logLevelEnv        = "LOG_LEVEL"
	serverAddrEnv      = "STOCKQUIZ_ADDR"
	clovaHostEnv       = "CLOVA_HOST"
	clovaAPIKeyEnv     = "CLOVA_API_KEY"
	clovaGatewayKeyEnv = "CLOVA_GATEWAY_KEY"
	clovaRequestIDEnv  = "CLOVA_REQUEST_ID"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
)

// Aggregation policies for the completion stream.
const (
	// AggregateConcat joins every captured delta; for endpoints that stream token deltas only.
	AggregateConcat = "concat"
	// AggregateLast keeps the last captured content; for endpoints that re-send the
	// cumulative answer (HCX-003 closes the stream with a full "result" event).
	AggregateLast = "last"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	Search        SearchConfig       `yaml:"search"`
	Extractor     ExtractorConfig    `yaml:"extractor"`
	Collector     CollectorConfig    `yaml:"collector"`
	Completion    CompletionConfig   `yaml:"completion"`
	Prompt        PromptConfig       `yaml:"prompt"`
	Notifications NotificationConfig `yaml:"notifications"`
	Broadcast     BroadcastConfig    `yaml:"broadcast"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig describes the web UI listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// RateLimit is the per-client quiz requests per second; <= 0 disables limiting.
	RateLimit float64 `yaml:"rateLimit"`
	Burst     int     `yaml:"burst"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool `yaml:"trustProxy"`
}

// SearchConfig points at the news search endpoint and its result layout.
type SearchConfig struct {
	Endpoint          string        `yaml:"endpoint"`
	Sort              string        `yaml:"sort"`
	Recency           string        `yaml:"recency"`
	Timeout           time.Duration `yaml:"timeout"`
	ContainerSelector string        `yaml:"containerSelector"`
	GroupSelector     string        `yaml:"groupSelector"`
	LinkSelector      string        `yaml:"linkSelector"`
	NoResultSelector  string        `yaml:"noResultSelector"`
}

// ExtractorConfig controls article page fetching.
type ExtractorConfig struct {
	UserAgent string        `yaml:"userAgent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// CollectorConfig caps and paces article collection.
type CollectorConfig struct {
	MaxArticles   int           `yaml:"maxArticles"`
	Delay         time.Duration `yaml:"delay"`
	Workers       int           `yaml:"workers"`
	KeywordSuffix *string       `yaml:"keywordSuffix"`
}

// Suffix returns the configured keyword suffix.
func (c CollectorConfig) Suffix() string {
	if c.KeywordSuffix == nil {
		return ""
	}
	return *c.KeywordSuffix
}

// CompletionConfig defines how to contact the streaming chat-completion API.
type CompletionConfig struct {
	Host        string         `yaml:"host"`
	Path        string         `yaml:"path"`
	APIKey      string         `yaml:"apiKey"`
	GatewayKey  string         `yaml:"gatewayKey"`
	RequestID   string         `yaml:"requestId"`
	Aggregation string         `yaml:"aggregation"`
	Timeout     time.Duration  `yaml:"timeout"`
	Sampling    SamplingConfig `yaml:"sampling"`
}

// Endpoint joins host and path.
func (c CompletionConfig) Endpoint() string {
	return strings.TrimSuffix(c.Host, "/") + "/" + strings.TrimPrefix(c.Path, "/")
}

// SamplingConfig mirrors the generation parameters of the completion body.
type SamplingConfig struct {
	TopP             float64  `yaml:"topP"`
	TopK             int      `yaml:"topK"`
	MaxTokens        int      `yaml:"maxTokens"`
	Temperature      float64  `yaml:"temperature"`
	RepeatPenalty    float64  `yaml:"repeatPenalty"`
	StopBefore       []string `yaml:"stopBefore"`
	IncludeAIFilters *bool    `yaml:"includeAiFilters"`
	Seed             int      `yaml:"seed"`
}

// PromptConfig allows replacing the built-in quiz instructions.
type PromptConfig struct {
	SystemPrompt string `yaml:"systemPrompt"`
	Separator    string `yaml:"separator"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// BroadcastConfig schedules recurring quizzes for a watchlist. A quiz is only
// delivered when a notifier is configured.
type BroadcastConfig struct {
	Interval   time.Duration `yaml:"interval"`
	RunOnStart bool          `yaml:"runOnStart"`
	Tickers    []string      `yaml:"tickers"`
	Age        int           `yaml:"age"`
	Experience int           `yaml:"experience"`
}

// Enabled reports whether a broadcast schedule is set up.
func (b BroadcastConfig) Enabled() bool {
	return b.Interval > 0 && len(b.Tickers) > 0
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg, err := Parse(raw)
			if err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()

	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(clovaHostEnv); v != "" {
		c.Completion.Host = v
	}

	if v := os.Getenv(clovaAPIKeyEnv); v != "" {
		c.Completion.APIKey = v
	}

	if v := os.Getenv(clovaGatewayKeyEnv); v != "" {
		c.Completion.GatewayKey = v
	}

	if v := os.Getenv(clovaRequestIDEnv); v != "" {
		c.Completion.RequestID = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) normalize() {
	switch strings.ToLower(strings.TrimSpace(c.Completion.Aggregation)) {
	case AggregateConcat:
		c.Completion.Aggregation = AggregateConcat
	case AggregateLast:
		c.Completion.Aggregation = AggregateLast
	default:
		log.Printf("config: unknown aggregation %q, reverting to %s", c.Completion.Aggregation, AggregateLast)
		c.Completion.Aggregation = AggregateLast
	}

	if c.Collector.Workers < 1 {
		c.Collector.Workers = 1
	}
	if c.Collector.Delay < 0 {
		c.Collector.Delay = 0
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.ShutdownTimeout > 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}
	if override.Server.RateLimit != 0 {
		base.Server.RateLimit = override.Server.RateLimit
	}
	if override.Server.Burst > 0 {
		base.Server.Burst = override.Server.Burst
	}
	if override.Server.TrustProxy {
		base.Server.TrustProxy = true
	}

	base.Search = mergeSearch(base.Search, override.Search)

	if override.Extractor.UserAgent != "" {
		base.Extractor.UserAgent = override.Extractor.UserAgent
	}
	if override.Extractor.Timeout > 0 {
		base.Extractor.Timeout = override.Extractor.Timeout
	}

	if override.Collector.MaxArticles != 0 {
		base.Collector.MaxArticles = override.Collector.MaxArticles
	}
	if override.Collector.Delay != 0 {
		base.Collector.Delay = override.Collector.Delay
	}
	if override.Collector.Workers != 0 {
		base.Collector.Workers = override.Collector.Workers
	}
	if override.Collector.KeywordSuffix != nil {
		base.Collector.KeywordSuffix = override.Collector.KeywordSuffix
	}

	base.Completion = mergeCompletion(base.Completion, override.Completion)

	if override.Prompt.SystemPrompt != "" {
		base.Prompt.SystemPrompt = override.Prompt.SystemPrompt
	}
	if override.Prompt.Separator != "" {
		base.Prompt.Separator = override.Prompt.Separator
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Broadcast.Interval > 0 {
		base.Broadcast.Interval = override.Broadcast.Interval
	}
	if override.Broadcast.RunOnStart {
		base.Broadcast.RunOnStart = true
	}
	if len(override.Broadcast.Tickers) > 0 {
		base.Broadcast.Tickers = override.Broadcast.Tickers
	}
	if override.Broadcast.Age > 0 {
		base.Broadcast.Age = override.Broadcast.Age
	}
	if override.Broadcast.Experience > 0 {
		base.Broadcast.Experience = override.Broadcast.Experience
	}

	return base
}

func mergeSearch(base, override SearchConfig) SearchConfig {
	if override.Endpoint != "" {
		base.Endpoint = override.Endpoint
	}
	if override.Sort != "" {
		base.Sort = override.Sort
	}
	if override.Recency != "" {
		base.Recency = override.Recency
	}
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}
	if override.ContainerSelector != "" {
		base.ContainerSelector = override.ContainerSelector
	}
	if override.GroupSelector != "" {
		base.GroupSelector = override.GroupSelector
	}
	if override.LinkSelector != "" {
		base.LinkSelector = override.LinkSelector
	}
	if override.NoResultSelector != "" {
		base.NoResultSelector = override.NoResultSelector
	}
	return base
}

func mergeCompletion(base, override CompletionConfig) CompletionConfig {
	if override.Host != "" {
		base.Host = override.Host
	}
	if override.Path != "" {
		base.Path = override.Path
	}
	if override.APIKey != "" {
		base.APIKey = override.APIKey
	}
	if override.GatewayKey != "" {
		base.GatewayKey = override.GatewayKey
	}
	if override.RequestID != "" {
		base.RequestID = override.RequestID
	}
	if override.Aggregation != "" {
		base.Aggregation = override.Aggregation
	}
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}

	s := override.Sampling
	if s.TopP != 0 {
		base.Sampling.TopP = s.TopP
	}
	if s.TopK != 0 {
		base.Sampling.TopK = s.TopK
	}
	if s.MaxTokens != 0 {
		base.Sampling.MaxTokens = s.MaxTokens
	}
	if s.Temperature != 0 {
		base.Sampling.Temperature = s.Temperature
	}
	if s.RepeatPenalty != 0 {
		base.Sampling.RepeatPenalty = s.RepeatPenalty
	}
	if len(s.StopBefore) > 0 {
		base.Sampling.StopBefore = s.StopBefore
	}
	if s.IncludeAIFilters != nil {
		base.Sampling.IncludeAIFilters = s.IncludeAIFilters
	}
	if s.Seed != 0 {
		base.Sampling.Seed = s.Seed
	}
	return base
}

func defaultConfig() Config {
	suffix := " 주가"
	aiFilters := true

	return Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Addr: ":8501", ShutdownTimeout: 5 * time.Second, RateLimit: 0.5, Burst: 3},
		Search: SearchConfig{
			Endpoint:          "https://search.naver.com/search.naver",
			Sort:              "1",
			Recency:           "",
			Timeout:           10 * time.Second,
			ContainerSelector: "ul.list_news",
			GroupSelector:     "div.info_group",
			LinkSelector:      "a.info",
			NoResultSelector:  ".not_found02",
		},
		Extractor: ExtractorConfig{
			UserAgent: "Mozilla/5.0",
			Timeout:   10 * time.Second,
		},
		Collector: CollectorConfig{
			MaxArticles:   3,
			Delay:         300 * time.Millisecond,
			Workers:       1,
			KeywordSuffix: &suffix,
		},
		Completion: CompletionConfig{
			Host:        "https://clovastudio.stream.ntruss.com",
			Path:        "/testapp/v1/chat-completions/HCX-003",
			Aggregation: AggregateLast,
			Timeout:     60 * time.Second,
			Sampling: SamplingConfig{
				TopP:             0.8,
				TopK:             0,
				MaxTokens:        256,
				Temperature:      0.5,
				RepeatPenalty:    5.0,
				StopBefore:       []string{},
				IncludeAIFilters: &aiFilters,
				Seed:             0,
			},
		},
		Prompt:    PromptConfig{Separator: " ."},
		Broadcast: BroadcastConfig{Age: 24, Experience: 1},
	}
}
