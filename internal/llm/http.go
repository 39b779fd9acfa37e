package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
)

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 4 << 20

// StatusError is a non-2xx provider response. Message is the provider's own
// error text when the body carries one.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("model endpoint status %d", e.Status)
	}
	return fmt.Sprintf("model endpoint status %d: %s", e.Status, e.Message)
}

// Transient reports whether the backend is overloaded or down rather than
// refusing the request itself.
func (e *StatusError) Transient() bool {
	switch {
	case e.Status == http.StatusTooManyRequests, e.Status == http.StatusRequestTimeout:
		return true
	case e.Status >= 500:
		return true
	}
	return false
}

// SendJSON posts body as JSON to url and returns the raw response body.
// Failures are classified for the pipeline:
//   - context cancellation and expiry come back unchanged, so request
//     deadlines stay deadlines;
//   - connection failures and transient statuses (408, 429, 5xx) wrap
//     common.ErrModelUnavailable;
//   - any other non-2xx status is a *StatusError on its own.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Debug("llm.http.request", "req_id", reqID, "url", url, "content_length", len(bs))

	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("model request: %w", ctxErr)
		}
		logger.Warn("llm.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, errors.Join(common.ErrModelUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("llm.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("read response: %w", ctxErr)
		}
		return nil, errors.Join(common.ErrModelUnavailable, fmt.Errorf("read response: %w", err))
	}

	logger.Debug("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 == 2 {
		return raw, nil
	}
	se := &StatusError{Status: resp.StatusCode, Message: providerMessage(raw)}
	if se.Transient() {
		logger.Warn("llm.http.unavailable", "req_id", reqID, "status", se.Status, "message", se.Message)
		return nil, errors.Join(common.ErrModelUnavailable, se)
	}
	logger.Error("llm.http.rejected", "req_id", reqID, "status", se.Status, "message", se.Message)
	return nil, se
}

// providerMessage pulls the message out of an OpenAI-style error body
// ({"error": {"message": ...}} or {"error": "..."}).
func providerMessage(raw []byte) string {
	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil || len(body.Error) == 0 {
		return ""
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body.Error, &obj) == nil && obj.Message != "" {
		return truncateMessage(obj.Message)
	}
	var s string
	if json.Unmarshal(body.Error, &s) == nil {
		return truncateMessage(s)
	}
	return ""
}

func truncateMessage(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > 200 {
		return string(r[:200]) + "..."
	}
	return s
}
