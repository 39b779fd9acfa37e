package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(context.Background(), common.AuditConfig{DSN: "sqlite::memory:"}, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close(logger) })
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestRecordAndListRuns(t *testing.T) {
	db := openTestDB(t)
	repo := NewRunRepository(db, nil)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first := entity.SummaryRun{
		ID: uuid.New(), RequestID: "req-1", Source: "http",
		Status: string(constants.RunStatusOK), InputChars: 120, SectionsFound: 3,
		EntitiesFound: 4, FlagsRaised: 1, NERDegraded: true,
		StartedAt: base, FinishedAt: base.Add(40 * time.Millisecond),
	}
	second := entity.SummaryRun{
		ID: uuid.New(), Source: "cli",
		Status: string(constants.RunStatusRejected), ErrorCode: common.CodeEmptyInput,
		StartedAt: base.Add(time.Minute), FinishedAt: base.Add(time.Minute),
	}
	for _, r := range []entity.SummaryRun{first, second} {
		if err := repo.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := repo.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	if runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Errorf("order = %s, %s", runs[0].ID, runs[1].ID)
	}
	got := runs[1]
	if got.RequestID != "req-1" || got.SectionsFound != 3 || got.FlagsRaised != 1 || !got.NERDegraded || got.SummarizerDegraded {
		t.Errorf("run = %+v", got)
	}
	if !got.StartedAt.Equal(first.StartedAt) || got.Elapsed() != 40*time.Millisecond {
		t.Errorf("times = %s .. %s", got.StartedAt, got.FinishedAt)
	}
	if runs[0].ErrorCode != common.CodeEmptyInput {
		t.Errorf("error code = %q", runs[0].ErrorCode)
	}

	limited, err := repo.ListRuns(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("ListRuns(1) = %d, %v", len(limited), err)
	}
}

func TestRecordRunDuplicateID(t *testing.T) {
	repo := NewRunRepository(openTestDB(t), nil)
	run := entity.SummaryRun{ID: uuid.New(), Source: "http", Status: "OK", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := repo.RecordRun(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if err := repo.RecordRun(context.Background(), run); !errors.Is(err, common.ErrDatabase) {
		t.Errorf("duplicate insert error = %v, want ErrDatabase", err)
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), common.AuditConfig{DSN: "mysql://x"}, nil)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("error = %v", err)
	}
}

func TestNopRunRepository(t *testing.T) {
	var repo RunRepository = NopRunRepository{}
	if err := repo.RecordRun(context.Background(), entity.SummaryRun{}); err != nil {
		t.Error(err)
	}
	runs, err := repo.ListRuns(context.Background(), 5)
	if err != nil || runs == nil || len(runs) != 0 {
		t.Errorf("ListRuns = %v, %v", runs, err)
	}
}
