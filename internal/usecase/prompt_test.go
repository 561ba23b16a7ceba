package usecase

import (
	"errors"
	"strings"
	"testing"

	"StockQuiz/internal/config"
	"StockQuiz/internal/domain"
)

func testSampling() config.SamplingConfig {
	filters := true
	return config.SamplingConfig{
		TopP:             0.8,
		TopK:             0,
		MaxTokens:        256,
		Temperature:      0.5,
		RepeatPenalty:    5.0,
		IncludeAIFilters: &filters,
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	b := NewQuizPromptBuilder(config.PromptConfig{}, testSampling())
	profile := domain.UserProfile{InvestmentDate: "2023-04-12", Age: 24, ExperienceYears: 1, Ticker: "삼성전자"}

	req, err := b.Build([]string{"첫 기사", "  ", "둘째 기사"}, profile)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != domain.RoleSystem || req.Messages[1].Role != domain.RoleUser {
		t.Fatalf("unexpected roles: %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[0].Content, "4지선다") {
		t.Fatalf("system message lost the quiz instructions: %q", req.Messages[0].Content)
	}

	user := req.Messages[1].Content
	for _, want := range []string{"2023-04-12", "24", "1", "삼성전자", "첫 기사 .둘째 기사"} {
		if !strings.Contains(user, want) {
			t.Fatalf("user message missing %q: %q", want, user)
		}
	}

	if req.Sampling.TopP != 0.8 || req.Sampling.MaxTokens != 256 || !req.Sampling.IncludeAIFilters {
		t.Fatalf("unexpected sampling: %+v", req.Sampling)
	}
	if req.Sampling.StopBefore == nil {
		t.Fatal("stopBefore must be an empty list, not nil")
	}
}

func TestBuildPromptOverrides(t *testing.T) {
	t.Parallel()

	b := NewQuizPromptBuilder(config.PromptConfig{SystemPrompt: "  custom  ", Separator: "\n---\n"}, config.SamplingConfig{})
	req, err := b.Build([]string{"a", "b"}, domain.UserProfile{Ticker: "X"})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if req.Messages[0].Content != "custom" {
		t.Fatalf("unexpected system prompt: %q", req.Messages[0].Content)
	}
	if !strings.Contains(req.Messages[1].Content, "a\n---\nb") {
		t.Fatalf("separator not applied: %q", req.Messages[1].Content)
	}
	if !req.Sampling.IncludeAIFilters {
		t.Fatal("includeAiFilters defaults to true")
	}
}

func TestBuildPromptRejects(t *testing.T) {
	t.Parallel()

	b := NewQuizPromptBuilder(config.PromptConfig{}, testSampling())

	if _, err := b.Build(nil, domain.UserProfile{Ticker: "X"}); !errors.Is(err, domain.ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
	if _, err := b.Build([]string{"a"}, domain.UserProfile{Ticker: "X", Age: -1}); !errors.Is(err, domain.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}
