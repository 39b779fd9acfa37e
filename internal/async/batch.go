package async

import (
	"context"
	"log/slog"
	"sync"
)

// RunBatch summarizes every path on a ProcessorQueue and returns the results
// in the order of paths. Paths not enqueued before ctx ended carry ctx's error.
func RunBatch(ctx context.Context, proc ReportProcessor, paths []string, logger *slog.Logger, opts ...Option) []Result {
	var (
		mu      sync.Mutex
		results = make(map[string]Result, len(paths))
	)
	opts = append(opts, WithResultHandler(func(r Result) {
		mu.Lock()
		results[r.Job.Path] = r
		mu.Unlock()
	}))
	q := NewProcessorQueue(proc, logger, opts...)

	var enqueueErr error
	for _, p := range paths {
		if err := q.Enqueue(ctx, Job{Path: p}); err != nil {
			enqueueErr = err
			break
		}
	}
	q.Shutdown(context.WithoutCancel(ctx))

	out := make([]Result, 0, len(paths))
	mu.Lock()
	defer mu.Unlock()
	for _, p := range paths {
		r, ok := results[p]
		if !ok {
			r = Result{Job: Job{Path: p}, Err: enqueueErr}
			if r.Err == nil {
				r.Err = ErrQueueClosed
			}
		}
		out = append(out, r)
	}
	return out
}
