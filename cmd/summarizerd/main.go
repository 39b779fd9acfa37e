package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/pipeline"
	"github.com/joseph-ayodele/medreport-summarizer/internal/export"
	svc "github.com/joseph-ayodele/medreport-summarizer/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Models are loaded once and shared read-only by every request
	models, err := pipeline.BuildModels(cfg, logger)
	if err != nil {
		logger.Error("failed to build models", "error", err)
		os.Exit(1)
	}

	runs, closeAudit, err := svc.ConnectAudit(ctx, cfg.Audit, logger)
	if err != nil {
		logger.Error("failed to open audit store", "error", err)
		os.Exit(1)
	}
	defer closeAudit()

	processor := pipeline.NewProcessor(logger, models, cfg.Pipeline, runs)
	api := svc.NewAPI(processor, export.NewService(logger), runs, logger)

	var (
		httpServer *http.Server
		grpcServer *grpc.Server
		healthSrv  *health.Server
	)
	errCh := make(chan error, 2)

	if cfg.Server.HTTPAddr != "" {
		httpServer = &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           svc.NewRouter(api, cfg.Server),
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.Pipeline.RequestTimeout + 10*time.Second,
		}
		logger.Info("http listening", "addr", cfg.Server.HTTPAddr)
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		grpcServer, healthSrv = svc.NewGRPCServer(api)
		logger.Info("grpc listening", "addr", cfg.Server.GRPCAddr)
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if healthSrv != nil {
		healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", "error", err)
		}
	}
	if grpcServer != nil {
		done := make(chan struct{})
		go func() { grpcServer.GracefulStop(); close(done) }()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
	}
	logger.Info("stopped")
}
