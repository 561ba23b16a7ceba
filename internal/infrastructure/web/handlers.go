package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"StockQuiz/internal/domain"
)

const (
	defaultAge        = 24
	defaultExperience = 1
	dateLayout        = "2006-01-02"

	emptyNotice   = "관련 최신 기사를 찾지 못했습니다. 다른 종목명으로 다시 시도해 주세요."
	invalidNotice = "입력값을 확인해 주세요."
	failureNotice = "퀴즈 생성에 실패했습니다. 잠시 후 다시 시도해 주세요."
)

type quizInput struct {
	Keyword    string `json:"keyword"`
	Date       string `json:"date"`
	Age        int    `json:"age"`
	Experience int    `json:"experience"`
}

type quizResponse struct {
	Titles  []string `json:"titles"`
	Links   []string `json:"links"`
	Preview string   `json:"preview,omitempty"`
	Quiz    string   `json:"quiz"`
	Error   string   `json:"error,omitempty"`
}

type pageData struct {
	Form          quizInput
	Result        *domain.QuizResult
	Notice        string
	Failure       string
	MaxAge        int
	MaxExperience int
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, pageData{Form: s.defaultInput()})
}

func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	in, err := s.parseForm(r)
	if err != nil {
		s.render(w, http.StatusBadRequest, pageData{Form: in, Failure: invalidNotice})
		return
	}

	result, err := s.quiz.GenerateQuiz(r.Context(), in.Keyword, in.Date, in.Age, in.Experience)
	data := pageData{Form: in, Result: &result}
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		switch {
		case errors.Is(err, domain.ErrEmptyResult):
			data.Notice = emptyNotice
		case errors.Is(err, domain.ErrInvalidProfile):
			data.Failure = invalidNotice
		default:
			s.warn("quiz generation failed", "keyword", in.Keyword, "error", err)
			data.Failure = failureNotice
		}
	}
	s.render(w, status, data)
}

func (s *Server) generateJSON(w http.ResponseWriter, r *http.Request) {
	in := s.defaultInput()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, quizResponse{Error: "invalid request body"})
		return
	}

	result, err := s.quiz.GenerateQuiz(r.Context(), in.Keyword, in.Date, in.Age, in.Experience)
	resp := quizResponse{
		Titles:  nonNil(result.Titles),
		Links:   nonNil(result.Links),
		Preview: result.Preview,
		Quiz:    result.Text,
	}
	if err != nil {
		if !errors.Is(err, domain.ErrEmptyResult) && !errors.Is(err, domain.ErrInvalidProfile) {
			s.warn("quiz generation failed", "keyword", in.Keyword, "error", err)
		}
		resp.Error = err.Error()
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) defaultInput() quizInput {
	return quizInput{
		Date:       s.now().Format(dateLayout),
		Age:        defaultAge,
		Experience: defaultExperience,
	}
}

func (s *Server) parseForm(r *http.Request) (quizInput, error) {
	in := s.defaultInput()
	if err := r.ParseForm(); err != nil {
		return in, err
	}

	in.Keyword = strings.TrimSpace(r.PostFormValue("keyword"))
	if v := strings.TrimSpace(r.PostFormValue("date")); v != "" {
		in.Date = v
	}

	var err error
	if in.Age, err = intField(r, "age", defaultAge); err != nil {
		return in, err
	}
	if in.Experience, err = intField(r, "experience", defaultExperience); err != nil {
		return in, err
	}
	return in, nil
}

func intField(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.PostFormValue(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// statusFor maps pipeline error kinds to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	data.MaxAge, data.MaxExperience = domain.MaxAge, domain.MaxExperienceYears

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.warn("render page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
