package llm

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

// EntityRecognizer finds typed clinical mentions in free text.
type EntityRecognizer interface {
	RecognizeEntities(ctx context.Context, text string) ([]entity.Entity, error)
}

// Summarizer condenses free text into a short narrative.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Models is the process-lifetime set of model backends. It is built once at
// startup and shared read-only by every request.
type Models struct {
	Recognizer EntityRecognizer
	Summarizer Summarizer

	NERBackend        string
	SummarizerBackend string
}

// Status reports which backends are usable.
func (m *Models) Status() map[string]any {
	return map[string]any{
		"ner":        map[string]any{"backend": m.NERBackend, "available": available(m.Recognizer)},
		"summarizer": map[string]any{"backend": m.SummarizerBackend, "available": available(m.Summarizer)},
	}
}

func available(v any) bool {
	if v == nil {
		return false
	}
	_, off := v.(Unavailable)
	return !off
}

// Unavailable is the backend used when a model is switched off or failed to load.
type Unavailable struct {
	Reason string
}

func (u Unavailable) RecognizeEntities(context.Context, string) ([]entity.Entity, error) {
	return nil, u.err()
}

func (u Unavailable) Summarize(context.Context, string) (string, error) {
	return "", u.err()
}

func (u Unavailable) err() error {
	if u.Reason == "" {
		return common.ErrModelUnavailable
	}
	return fmt.Errorf("%w: %s", common.ErrModelUnavailable, u.Reason)
}
