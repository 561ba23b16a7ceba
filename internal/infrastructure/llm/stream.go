package llm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"StockQuiz/internal/config"
	"StockQuiz/internal/domain"
)

const (
	dataPrefix  = "data:"
	eventPrefix = "event:"
	errorEvent  = "error"

	maxLineSize = 1 << 20
)

type eventPayload struct {
	Message *struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	} `json:"message"`
	Status *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
}

// parseEvent decodes the JSON payload of a "data:" line.
func parseEvent(name, payload string) (domain.StreamEvent, *eventPayload, error) {
	payload = strings.TrimSpace(payload)
	event := domain.StreamEvent{Kind: domain.EventOther, Name: name}
	if payload == "" || payload == "[DONE]" {
		return event, nil, nil
	}

	var body eventPayload
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return event, nil, fmt.Errorf("%w: %v", domain.ErrStreamDecode, err)
	}

	if body.Message != nil && body.Message.Content != nil {
		event.Kind = domain.EventMessageDelta
		event.Content = *body.Message.Content
	}
	return event, &body, nil
}

// streamDecoder reassembles the answer from decoded events under one aggregation policy.
type streamDecoder struct {
	policy   string
	logger   *slog.Logger
	event    string
	parts    strings.Builder
	last     string
	captured bool
}

func newStreamDecoder(policy string, log *slog.Logger) *streamDecoder {
	if policy != config.AggregateConcat {
		policy = config.AggregateLast
	}
	return &streamDecoder{policy: policy, logger: log}
}

// feed consumes one line of the stream. Malformed data lines are logged and
// skipped; only an upstream error event aborts decoding.
func (d *streamDecoder) feed(line string) error {
	line = strings.TrimRight(line, "\r")

	switch {
	case line == "":
		d.event = ""
		return nil
	case strings.HasPrefix(line, eventPrefix):
		d.event = strings.TrimSpace(line[len(eventPrefix):])
		return nil
	case !strings.HasPrefix(line, dataPrefix):
		return nil
	}

	event, body, err := parseEvent(d.event, line[len(dataPrefix):])
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("skip stream line", "event", d.event, "error", err)
		}
		return nil
	}

	if event.Name == errorEvent {
		return upstreamError(body)
	}

	d.add(event)
	return nil
}

func (d *streamDecoder) add(event domain.StreamEvent) {
	if event.Kind != domain.EventMessageDelta {
		return
	}
	d.captured = true
	if d.policy == config.AggregateConcat {
		d.parts.WriteString(event.Content)
		return
	}
	d.last = event.Content
}

// result returns the reassembled answer or ErrCompletionEmpty when nothing was captured.
func (d *streamDecoder) result() (string, error) {
	if !d.captured {
		return "", domain.ErrCompletionEmpty
	}
	if d.policy == config.AggregateConcat {
		return d.parts.String(), nil
	}
	return d.last, nil
}

// decodeStream reads r line by line and returns the reassembled answer.
func decodeStream(r io.Reader, policy string, log *slog.Logger) (string, error) {
	dec := newStreamDecoder(policy, log)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := dec.feed(scanner.Text()); err != nil {
			return "", err
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: read stream: %w", domain.ErrFetch, err)
	}

	return dec.result()
}

func upstreamError(body *eventPayload) error {
	if body != nil && body.Status != nil {
		return fmt.Errorf("%w: completion error event %s: %s", domain.ErrFetch, body.Status.Code, body.Status.Message)
	}
	return fmt.Errorf("%w: completion error event", domain.ErrFetch)
}
