package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/medreport-summarizer/internal/core/pipeline"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one report file to summarize.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// Result is the outcome of one Job. Exactly one of Result and Err is set.
type Result struct {
	Job    Job
	Result *pipeline.Result
	Err    error
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
