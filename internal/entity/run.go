package entity

import (
	"time"

	"github.com/google/uuid"
)

// SummaryRun is the metadata kept about one pipeline run. It holds counts
// and outcomes only, never report text.
type SummaryRun struct {
	ID                 uuid.UUID `json:"id"`
	RequestID          string    `json:"request_id,omitempty"`
	Source             string    `json:"source"` // http, grpc, cli
	Status             string    `json:"status"`
	ErrorCode          string    `json:"error_code,omitempty"`
	InputChars         int       `json:"input_chars"`
	SectionsFound      int       `json:"sections_found"`
	EntitiesFound      int       `json:"entities_found"`
	FlagsRaised        int       `json:"flags_raised"`
	NERDegraded        bool      `json:"ner_degraded"`
	SummarizerDegraded bool      `json:"summarizer_degraded"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
}

// Elapsed is the run's wall time.
func (r SummaryRun) Elapsed() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }
