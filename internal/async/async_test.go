package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/pipeline"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

type fakeProcessor struct {
	calls atomic.Int32
}

func (f *fakeProcessor) Process(_ context.Context, source, report string) (*pipeline.Result, error) {
	f.calls.Add(1)
	if strings.TrimSpace(report) == "" {
		return nil, common.ErrEmptyInput
	}
	rec := entity.NewSummaryRecord()
	rec.ChiefComplaint = entity.StrPtr(strings.TrimSpace(report))
	return &pipeline.Result{Record: rec, Run: entity.SummaryRun{Source: source}}, nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeReports(t *testing.T, contents ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i, c := range contents {
		p := filepath.Join(dir, string(rune('a'+i))+".txt")
		if err := os.WriteFile(p, []byte(c), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestRunBatchKeepsOrder(t *testing.T) {
	paths := writeReports(t, "cough", "", "fever", "rash")
	paths = append(paths, filepath.Join(filepath.Dir(paths[0]), "missing.txt"))
	proc := &fakeProcessor{}

	results := RunBatch(context.Background(), proc, paths, quietLogger(), WithWorkers(3), WithQueueSize(1))
	if len(results) != len(paths) {
		t.Fatalf("results = %d", len(results))
	}
	for i, r := range results {
		if r.Job.Path != paths[i] {
			t.Errorf("result %d path = %s, want %s", i, r.Job.Path, paths[i])
		}
	}
	if got := entity.Deref(results[0].Result.Record.ChiefComplaint); got != "cough" {
		t.Errorf("first = %q", got)
	}
	if results[0].Result.Run.Source != sourceBatch {
		t.Errorf("source = %q", results[0].Result.Run.Source)
	}
	if !errors.Is(results[1].Err, common.ErrEmptyInput) {
		t.Errorf("empty report err = %v", results[1].Err)
	}
	if !errors.Is(results[4].Err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", results[4].Err)
	}
	if proc.calls.Load() != 4 {
		t.Errorf("calls = %d, want 4", proc.calls.Load())
	}
}

func TestRunBatchRejectsLargeFiles(t *testing.T) {
	paths := writeReports(t, strings.Repeat("x", 100))
	results := RunBatch(context.Background(), &fakeProcessor{}, paths, quietLogger(), WithMaxFileBytes(10))
	if results[0].Err == nil {
		t.Error("oversized file accepted")
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, quietLogger())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)
	if err := q.Enqueue(ctx, Job{Path: "x"}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("err = %v", err)
	}
	q.Shutdown(ctx)
}
