package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
)

func statusServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
}

func TestSendJSONClassifiesStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
		message     string
	}{
		{"overloaded", http.StatusServiceUnavailable, `{"error":{"message":"engine overloaded"}}`, true, "engine overloaded"},
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, true, "slow down"},
		{"bad key", http.StatusUnauthorized, `{"error":{"message":"invalid api key","type":"auth"}}`, false, "invalid api key"},
		{"bad request plain body", http.StatusBadRequest, `nope`, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := statusServer(tt.status, tt.body)
			defer srv.Close()

			_, err := SendJSON(context.Background(), srv.Client(), srv.URL, map[string]any{"x": 1}, nil, logger)
			if got := errors.Is(err, common.ErrModelUnavailable); got != tt.unavailable {
				t.Errorf("unavailable = %v, want %v (err %v)", got, tt.unavailable, err)
			}
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *StatusError", err)
			}
			if se.Status != tt.status || se.Message != tt.message {
				t.Errorf("status error = %+v", se)
			}
		})
	}
}

func TestSendJSONOK(t *testing.T) {
	srv := statusServer(http.StatusOK, `{"ok":true}`)
	defer srv.Close()

	raw, err := SendJSON(context.Background(), srv.Client(), srv.URL, map[string]any{}, nil, nil)
	if err != nil || string(raw) != `{"ok":true}` {
		t.Errorf("raw = %q, err = %v", raw, err)
	}
}

func TestSendJSONKeepsContextErrors(t *testing.T) {
	srv := statusServer(http.StatusOK, `{}`)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SendJSON(ctx, srv.Client(), srv.URL, map[string]any{}, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, common.ErrModelUnavailable) {
		t.Errorf("cancellation reported as model unavailable: %v", err)
	}
}

func TestSendJSONConnectionFailureIsUnavailable(t *testing.T) {
	srv := statusServer(http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	_, err := SendJSON(context.Background(), nil, url, map[string]any{}, nil, nil)
	if !errors.Is(err, common.ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}
