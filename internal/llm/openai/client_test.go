package openai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["temperature"] != float64(0) {
			t.Errorf("temperature = %v", req["temperature"])
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
}

func newTestClient(url string) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: url, LenientOptional: true}, quietLogger())
}

func TestRecognizeEntities(t *testing.T) {
	srv := chatServer(t, `{"entities":[{"text":"pneumonia","type":"diagnosis"},{"text":"aspirin 81mg","type":"medication"}]}`, http.StatusOK)
	defer srv.Close()

	text := "Dx: Pneumonia. Started Aspirin 81mg."
	ents, err := newTestClient(srv.URL).RecognizeEntities(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 2 {
		t.Fatalf("entities = %+v", ents)
	}
	if ents[0].Text != "Pneumonia" || text[ents[0].Span.Start:ents[0].Span.End] != "Pneumonia" {
		t.Errorf("first = %+v", ents[0])
	}
}

func TestRecognizeEntitiesLenient(t *testing.T) {
	srv := chatServer(t, "```json\n[{\"text\":\"metformin\",\"label\":\"drug\"}]\n```", http.StatusOK)
	defer srv.Close()

	ents, err := newTestClient(srv.URL).RecognizeEntities(context.Background(), "on metformin")
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 1 || ents[0].Type != "medication" {
		t.Errorf("entities = %+v", ents)
	}
}

func TestSummarize(t *testing.T) {
	srv := chatServer(t, `{"summary":"Patient with chest pain. Troponin elevated."}`, http.StatusOK)
	defer srv.Close()

	got, err := newTestClient(srv.URL).Summarize(context.Background(), "long report")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "Patient with chest pain.") {
		t.Errorf("summary = %q", got)
	}
}

func TestServerErrorIsModelUnavailable(t *testing.T) {
	srv := chatServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	_, err := newTestClient(srv.URL).Summarize(context.Background(), "text")
	if !errors.Is(err, common.ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, quietLogger())
	if c.Configured() {
		t.Fatal("client should not be configured")
	}
	if _, err := c.RecognizeEntities(context.Background(), "x"); !errors.Is(err, common.ErrModelUnavailable) {
		t.Errorf("err = %v", err)
	}
}
