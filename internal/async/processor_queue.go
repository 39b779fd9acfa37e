package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/medreport-summarizer/internal/core/pipeline"
	"github.com/joseph-ayodele/medreport-summarizer/internal/ingest"
)

const sourceBatch = "cli"

// ReportProcessor is the part of pipeline.Processor the queue needs.
type ReportProcessor interface {
	Process(ctx context.Context, source, report string) (*pipeline.Result, error)
}

// ProcessorQueue summarizes report files on a fixed pool of workers and
// hands every outcome to the result callback.
type ProcessorQueue struct {
	proc     ReportProcessor
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	maxBytes int64
	onResult func(Result)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

// WithProcessTimeout bounds each job, including reading the file. The
// pipeline's own request timeout still applies inside it.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithMaxFileBytes rejects report files larger than n bytes.
func WithMaxFileBytes(n int64) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.maxBytes = n
		}
	}
}

// WithResultHandler sets the callback invoked from worker goroutines for
// every finished job. It must be safe for concurrent use.
func WithResultHandler(fn func(Result)) Option {
	return func(q *ProcessorQueue) {
		q.onResult = fn
	}
}

func NewProcessorQueue(proc ReportProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:     proc,
		logger:   logger,
		workers:  4,
		timeout:  time.Minute,
		maxBytes: 1 << 20,
		onResult: func(Result) {},
		ch:       make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					res := q.run(job)
					if res.Err != nil {
						q.logger.Error("queue.job.failed", "worker_id", workerID, "path", job.Path, "error", res.Err)
					} else {
						q.logger.Info("queue.job.ok", "worker_id", workerID, "path", job.Path,
							"flags", res.Result.Run.FlagsRaised,
							"elapsed_ms", res.Result.Run.Elapsed().Milliseconds(),
						)
					}
					q.onResult(res)
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(job Job) Result {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	report, err := ingest.ReadReport(job.Path, q.maxBytes)
	if err != nil {
		return Result{Job: job, Err: err}
	}
	res, err := q.proc.Process(ctx, sourceBatch, report)
	if err != nil {
		return Result{Job: job, Err: err}
	}
	return Result{Job: job, Result: res}
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "path", job.Path)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueued", "path", job.Path)
		return nil
	default:
	}
	q.logger.Debug("queue.full.backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or for
// ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.drained")
	}
}
