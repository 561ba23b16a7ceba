package usecase

import (
	"fmt"
	"strings"

	"StockQuiz/internal/config"
	"StockQuiz/internal/domain"
	"StockQuiz/internal/ports"
)

const defaultSeparator = " ."

const quizSystemPrompt = `-너는 내가 주는 뉴스 기사 정보를 취합해 사용자에게 주식 투자 교육 제공을 목적으로 퀴즈를 만들어줄거야.
-4지선다 퀴즈이고, 딱 1개만 만들면 돼.
-퀴즈는 내가 주는 최신기사 내용에서 주식 가격에 영향을 줄 정보를 중심으로 내줘.
-사용자는 투자 시점, 자신의 나이, 투자경력, 보유종목과 함께 최신기사 내용을 너에게 알려줄거야. 그러면 사용자의 나이 수준이나 투자경력에 맞는 난이도의 퀴즈를 내면 돼.
-기사에 없는 내용은 지어내지 마.

이제 바로 아래에 너가 해야하는 답변의 형식을 지정해줄게. 여기 oooooo부분에 너의 답변을 넣어주면 돼.
오늘의 퀴즈 : oooooo?
1. oooooo
2. oooooo
3. oooooo
4. oooooo


정답 : oooooo번 oooooo
해설 : oooooo`

const profileTemplate = "시점: %s\n투자자 나이: %d세\n투자경력: %d년\n보유종목: %s\n\n최신기사 내용:\n%s"

// QuizPromptBuilder implements ports.PromptBuilder with a fixed instruction
// template and the configured sampling parameters.
type QuizPromptBuilder struct {
	systemPrompt string
	separator    string
	sampling     domain.SamplingParams
}

var _ ports.PromptBuilder = (*QuizPromptBuilder)(nil)

// NewQuizPromptBuilder builds the prompt component from configuration.
func NewQuizPromptBuilder(cfg config.PromptConfig, sampling config.SamplingConfig) *QuizPromptBuilder {
	separator := cfg.Separator
	if separator == "" {
		separator = defaultSeparator
	}
	return &QuizPromptBuilder{
		systemPrompt: safePrompt(cfg.SystemPrompt),
		separator:    separator,
		sampling:     samplingParams(sampling),
	}
}

// Build joins the article bodies and renders the system and user messages.
func (b *QuizPromptBuilder) Build(contents []string, profile domain.UserProfile) (domain.CompletionRequest, error) {
	if err := profile.Validate(); err != nil {
		return domain.CompletionRequest{}, err
	}

	bodies := make([]string, 0, len(contents))
	for _, content := range contents {
		if content = strings.TrimSpace(content); content != "" {
			bodies = append(bodies, content)
		}
	}
	if len(bodies) == 0 {
		return domain.CompletionRequest{}, domain.ErrEmptyResult
	}

	user := fmt.Sprintf(profileTemplate,
		profile.InvestmentDate,
		profile.Age,
		profile.ExperienceYears,
		profile.Ticker,
		strings.Join(bodies, b.separator),
	)

	return domain.CompletionRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: b.systemPrompt},
			{Role: domain.RoleUser, Content: user},
		},
		Sampling: b.sampling,
	}, nil
}

func samplingParams(cfg config.SamplingConfig) domain.SamplingParams {
	stop := make([]string, len(cfg.StopBefore))
	copy(stop, cfg.StopBefore)

	includeFilters := true
	if cfg.IncludeAIFilters != nil {
		includeFilters = *cfg.IncludeAIFilters
	}

	return domain.SamplingParams{
		TopP:             cfg.TopP,
		TopK:             cfg.TopK,
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		RepeatPenalty:    cfg.RepeatPenalty,
		StopBefore:       stop,
		IncludeAIFilters: includeFilters,
		Seed:             cfg.Seed,
	}
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return quizSystemPrompt
	}
	return prompt
}
