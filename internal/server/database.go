package server

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	repo "github.com/joseph-ayodele/medreport-summarizer/internal/repository"
)

// ConnectAudit opens and migrates the audit store described by cfg. With an
// empty DSN it returns a no-op repository. The returned func closes the store.
func ConnectAudit(ctx context.Context, cfg common.AuditConfig, logger *slog.Logger) (repo.RunRepository, func(), error) {
	if cfg.DSN == "" {
		logger.Info("audit.disabled")
		return repo.NopRunRepository{}, func() {}, nil
	}

	db, err := repo.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.HealthCheck(ctx, cfg.DialTimeout); err != nil {
		logger.Error("audit.db.health_failed", "error", err)
		db.Close(logger)
		return nil, nil, common.WrapError(err, "audit database health check")
	}
	if err := repo.Migrate(ctx, db); err != nil {
		db.Close(logger)
		return nil, nil, err
	}
	logger.Info("audit.ready", "dialect", db.Dialect)
	return repo.NewRunRepository(db, logger), func() { db.Close(logger) }, nil
}
