package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"StockQuiz/internal/config"
	"StockQuiz/internal/domain"
	"StockQuiz/internal/ports"
)

const (
	headerAPIKey     = "X-NCP-CLOVASTUDIO-API-KEY"
	headerGatewayKey = "X-NCP-APIGW-API-KEY"
	headerRequestID  = "X-NCP-CLOVASTUDIO-REQUEST-ID"
)

// ClovaClient implements ports.CompletionClient against a CLOVA Studio style
// streaming chat-completion endpoint.
type ClovaClient struct {
	endpoint    string
	apiKey      string
	gatewayKey  string
	requestID   string
	aggregation string
	timeout     time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

var _ ports.CompletionClient = (*ClovaClient)(nil)

// NewClovaClient builds a client from configuration. The HTTP client has no
// overall timeout since the body is streamed; cfg.Timeout bounds each call via
// its context instead.
func NewClovaClient(cfg config.CompletionConfig, httpClient *http.Client, log *slog.Logger) *ClovaClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ClovaClient{
		endpoint:    cfg.Endpoint(),
		apiKey:      cfg.APIKey,
		gatewayKey:  cfg.GatewayKey,
		requestID:   cfg.RequestID,
		aggregation: cfg.Aggregation,
		timeout:     cfg.Timeout,
		httpClient:  httpClient,
		logger:      log,
	}
}

// Complete streams the completion and returns the reassembled answer.
func (c *ClovaClient) Complete(ctx context.Context, request domain.CompletionRequest) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: completion client is nil", domain.ErrNotConfigured)
	}
	if c.apiKey == "" || c.gatewayKey == "" || c.endpoint == "" {
		return "", fmt.Errorf("%w: completion client misconfigured", domain.ErrNotConfigured)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	requestID := c.requestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerGatewayKey, c.gatewayKey)
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "text/event-stream")

	c.debug("completion request", "endpoint", c.endpoint, "request_id", requestID, "messages", len(request.Messages))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: send completion: %w", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: completion error %s: %s", domain.ErrFetch, resp.Status, strings.TrimSpace(string(payload)))
	}

	answer, err := decodeStream(resp.Body, c.aggregation, c.logger)
	if err != nil {
		return "", err
	}

	c.debug("completion done", "request_id", requestID, "chars", len(answer))
	return answer, nil
}

func (c *ClovaClient) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
