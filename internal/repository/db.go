package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
)

// DB is an open audit database: the Ent SQL driver plus the pgx pool when
// the backend is Postgres.
type DB struct {
	Driver  *entsql.Driver
	Dialect string
	pool    *pgxpool.Pool
}

// Open connects to the audit database named by cfg.DSN. Postgres DSNs
// (postgres:// or postgresql://) go through a pgx pool; sqlite:<path>
// opens a SQLite file, or an in-memory database for sqlite::memory:.
func Open(ctx context.Context, cfg common.AuditConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case strings.HasPrefix(cfg.DSN, "postgres://"), strings.HasPrefix(cfg.DSN, "postgresql://"):
		return openPostgres(ctx, cfg, logger)
	case strings.HasPrefix(cfg.DSN, "sqlite:"):
		return openSQLite(ctx, strings.TrimPrefix(cfg.DSN, "sqlite:"), logger)
	}
	return nil, common.NewAppError("CONFIG_ERROR", "unsupported AUDIT_DB_URL scheme", common.ErrInvalidInput)
}

func openPostgres(ctx context.Context, cfg common.AuditConfig, logger *slog.Logger) (*DB, error) {
	logger.Info("audit.db.connecting", "dialect", dialect.Postgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("audit.db.connect_failed", "error", err)
		return nil, fmt.Errorf("parse audit dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	pc.ConnConfig.RuntimeParams["application_name"] = "medreport-summarizer"

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dctx, pc)
	if err != nil {
		logger.Error("audit.db.connect_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	// Wrap pool as *sql.DB for the Ent SQL driver
	db := stdlib.OpenDBFromPool(pool)
	logger.Info("audit.db.connected", "dialect", dialect.Postgres)
	return &DB{Driver: entsql.OpenDB(dialect.Postgres, db), Dialect: dialect.Postgres, pool: pool}, nil
}

func openSQLite(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	if path == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "sqlite path is empty", common.ErrInvalidInput)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	// A single connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("audit.db.connect_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	logger.Info("audit.db.connected", "dialect", dialect.SQLite, "path", path)
	return &DB{Driver: entsql.OpenDB(dialect.SQLite, db), Dialect: dialect.SQLite}, nil
}

// Close closes the database connections gracefully
func (d *DB) Close(logger *slog.Logger) {
	if d == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := d.Driver.Close(); err != nil {
		logger.Error("audit.db.close_failed", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	logger.Info("audit.db.closed")
}

// HealthCheck pings the database within timeout.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if d.pool != nil {
		return d.pool.Ping(ctx)
	}
	return d.Driver.DB().PingContext(ctx)
}
