package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Profile bounds accepted by the quiz form.
const (
	MaxAge             = 120
	MaxExperienceYears = 100
)

// UserProfile describes the investor the quiz is calibrated for.
type UserProfile struct {
	InvestmentDate  string
	Age             int
	ExperienceYears int
	Ticker          string
}

// Validate rejects profiles that cannot be rendered into a prompt.
func (p UserProfile) Validate() error {
	if strings.TrimSpace(p.Ticker) == "" {
		return fmt.Errorf("%w: ticker is required", ErrInvalidProfile)
	}
	if p.Age < 0 || p.Age > MaxAge {
		return fmt.Errorf("%w: age must be within 0..%d, got %d", ErrInvalidProfile, MaxAge, p.Age)
	}
	if p.ExperienceYears < 0 || p.ExperienceYears > MaxExperienceYears {
		return fmt.Errorf("%w: experience must be within 0..%d, got %d", ErrInvalidProfile, MaxExperienceYears, p.ExperienceYears)
	}
	return nil
}

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SamplingParams are the generation knobs sent with every completion request.
type SamplingParams struct {
	TopP             float64  `json:"topP"`
	TopK             int      `json:"topK"`
	MaxTokens        int      `json:"maxTokens"`
	Temperature      float64  `json:"temperature"`
	RepeatPenalty    float64  `json:"repeatPenalty"`
	StopBefore       []string `json:"stopBefore"`
	IncludeAIFilters bool     `json:"includeAiFilters"`
	Seed             int      `json:"seed"`
}

// CompletionRequest is the chat-completion payload.
type CompletionRequest struct {
	Messages []Message
	Sampling SamplingParams
}

// MarshalJSON flattens sampling params next to messages, matching the wire body.
func (r CompletionRequest) MarshalJSON() ([]byte, error) {
	stop := r.Sampling.StopBefore
	if stop == nil {
		stop = []string{}
	}

	type wire struct {
		Messages []Message `json:"messages"`
		SamplingParams
	}

	w := wire{Messages: r.Messages, SamplingParams: r.Sampling}
	w.StopBefore = stop
	return json.Marshal(w)
}

// EventKind tags a decoded stream event.
type EventKind int

const (
	EventOther EventKind = iota
	EventMessageDelta
)

// StreamEvent is one decoded "data:" line of the completion stream.
type StreamEvent struct {
	Kind    EventKind
	Name    string
	Content string
}

// QuizResult is what the pipeline hands back to the UI.
type QuizResult struct {
	Text   string
	Titles []string
	Links  []string
	// Preview is the first sentence of the collected text.
	Preview string
}

// FirstSentence returns the text of the first non-blank body up to its first
// period.
func FirstSentence(contents []string) string {
	for _, content := range contents {
		if content = strings.TrimSpace(content); content == "" {
			continue
		}
		sentence, _, _ := strings.Cut(content, ".")
		return strings.TrimSpace(sentence)
	}
	return ""
}
