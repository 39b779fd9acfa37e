// Package summarize produces the bounded narrative for a report.
package summarize

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/medreport-summarizer/internal/core/extract"
	"github.com/joseph-ayodele/medreport-summarizer/internal/llm"
)

// Service applies the input and output bounds around a summarizer backend.
type Service struct {
	backend      llm.Summarizer
	maxChars     int
	maxSentences int
	log          *slog.Logger
}

func NewService(backend llm.Summarizer, maxChars, maxSentences int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if backend == nil {
		backend = llm.Unavailable{Reason: "no summarizer configured"}
	}
	return &Service{backend: backend, maxChars: maxChars, maxSentences: maxSentences, log: logger}
}

// Run summarizes the indexed report. The result has at most maxSentences sentences.
func (s *Service) Run(ctx context.Context, idx *extract.Index) (string, error) {
	start := time.Now()
	input := BuildInput(idx, s.maxChars)
	if input == "" {
		return "", nil
	}
	out, err := s.backend.Summarize(ctx, input)
	if err != nil {
		return "", err
	}
	out = BoundSentences(out, s.maxSentences)
	s.log.Debug("summarize.ok",
		"input_len", len(input),
		"summary_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
