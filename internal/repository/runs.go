package repository

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

const runTable = "summary_run"

// MaxListLimit bounds ListRuns.
const MaxListLimit = 500

var runColumns = []string{
	"id", "request_id", "source", "status", "error_code", "input_chars",
	"sections_found", "entities_found", "flags_raised", "ner_degraded",
	"summarizer_degraded", "started_at", "finished_at",
}

var runDDL = map[string]string{
	dialect.Postgres: `CREATE TABLE IF NOT EXISTS summary_run (
	id TEXT PRIMARY KEY,
	request_id TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	error_code TEXT NOT NULL DEFAULT '',
	input_chars INTEGER NOT NULL,
	sections_found INTEGER NOT NULL,
	entities_found INTEGER NOT NULL,
	flags_raised INTEGER NOT NULL,
	ner_degraded BOOLEAN NOT NULL,
	summarizer_degraded BOOLEAN NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`,
	dialect.SQLite: `CREATE TABLE IF NOT EXISTS summary_run (
	id TEXT PRIMARY KEY,
	request_id TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	error_code TEXT NOT NULL DEFAULT '',
	input_chars INTEGER NOT NULL,
	sections_found INTEGER NOT NULL,
	entities_found INTEGER NOT NULL,
	flags_raised INTEGER NOT NULL,
	ner_degraded BOOLEAN NOT NULL,
	summarizer_degraded BOOLEAN NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
)`,
}

// RunRepository stores and lists pipeline run metadata.
type RunRepository interface {
	RecordRun(ctx context.Context, run entity.SummaryRun) error
	ListRuns(ctx context.Context, limit int) ([]entity.SummaryRun, error)
}

type runRepo struct {
	drv     *entsql.Driver
	dialect string
	log     *slog.Logger
}

// NewRunRepository returns a repository over db. Call Migrate before use.
func NewRunRepository(db *DB, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepo{drv: db.Driver, dialect: db.Dialect, log: logger}
}

// Migrate creates the summary_run table when it does not exist.
func Migrate(ctx context.Context, db *DB) error {
	ddl, ok := runDDL[db.Dialect]
	if !ok {
		return fmt.Errorf("migrate: unsupported dialect %q", db.Dialect)
	}
	if _, err := db.Driver.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("%w: migrate %s: %v", common.ErrDatabase, runTable, err)
	}
	return nil
}

func (r *runRepo) RecordRun(ctx context.Context, run entity.SummaryRun) error {
	query, args := entsql.Dialect(r.dialect).
		Insert(runTable).
		Columns(runColumns...).
		Values(
			run.ID.String(), run.RequestID, run.Source, run.Status, run.ErrorCode, run.InputChars,
			run.SectionsFound, run.EntitiesFound, run.FlagsRaised, run.NERDegraded,
			run.SummarizerDegraded, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		).
		Query()
	if _, err := r.drv.DB().ExecContext(ctx, query, args...); err != nil {
		r.log.Error("audit.run.insert_failed", "run_id", run.ID.String(), "error", err)
		return fmt.Errorf("%w: insert run: %v", common.ErrDatabase, err)
	}
	r.log.Debug("audit.run.recorded", "run_id", run.ID.String(), "status", run.Status)
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (r *runRepo) ListRuns(ctx context.Context, limit int) ([]entity.SummaryRun, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	query, args := entsql.Dialect(r.dialect).
		Select(runColumns...).
		From(entsql.Table(runTable)).
		OrderBy(entsql.Desc("started_at"), entsql.Desc("id")).
		Limit(limit).
		Query()

	rows, err := r.drv.DB().QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Error("audit.run.list_failed", "error", err)
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	out := make([]entity.SummaryRun, 0, limit)
	for rows.Next() {
		var (
			run entity.SummaryRun
			id  string
		)
		if err := rows.Scan(
			&id, &run.RequestID, &run.Source, &run.Status, &run.ErrorCode, &run.InputChars,
			&run.SectionsFound, &run.EntitiesFound, &run.FlagsRaised, &run.NERDegraded,
			&run.SummarizerDegraded, &run.StartedAt, &run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan run: %v", common.ErrDatabase, err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: run id %q: %v", common.ErrDatabase, id, err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}
	return out, nil
}

// NopRunRepository is used when auditing is disabled.
type NopRunRepository struct{}

func (NopRunRepository) RecordRun(context.Context, entity.SummaryRun) error { return nil }

func (NopRunRepository) ListRuns(context.Context, int) ([]entity.SummaryRun, error) {
	return []entity.SummaryRun{}, nil
}
