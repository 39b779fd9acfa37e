package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/pipeline"
	svc "github.com/joseph-ayodele/medreport-summarizer/internal/server"
)

// app is the wiring shared by every subcommand.
type app struct {
	cfg       *common.Config
	logger    *slog.Logger
	processor *pipeline.Processor
	close     func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	models, err := pipeline.BuildModels(cfg, logger)
	if err != nil {
		return nil, err
	}
	runs, closeAudit, err := svc.ConnectAudit(ctx, cfg.Audit, logger)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:       cfg,
		logger:    logger,
		processor: pipeline.NewProcessor(logger, models, cfg.Pipeline, runs),
		close:     closeAudit,
	}, nil
}
