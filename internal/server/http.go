package server

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/pipeline"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
	"github.com/joseph-ayodele/medreport-summarizer/internal/export"
	"github.com/joseph-ayodele/medreport-summarizer/internal/repository"
)

const (
	sourceHTTP = "http"
	sourceGRPC = "grpc"

	healthMessage = "Medical Report Summarizer API is running"
)

// API holds what the HTTP and gRPC handlers share.
type API struct {
	proc     *pipeline.Processor
	exporter *export.Service
	runs     repository.RunRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewAPI(proc *pipeline.Processor, exporter *export.Service, runs repository.RunRepository, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	if runs == nil {
		runs = repository.NopRunRepository{}
	}
	return &API{proc: proc, exporter: exporter, runs: runs, logger: logger, now: time.Now}
}

// NewRouter builds the HTTP handler tree.
func NewRouter(api *API, cfg common.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestContext(api.logger))
	r.Use(recoverJSON(api.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.Limit(cfg.RateLimit, cfg.RateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(w, http.StatusTooManyRequests, failureEnvelope(msgRateLimited))
				}),
			))
		}
		r.Use(limitBody(cfg.MaxBodyBytes))

		r.Get("/health", api.handleHealth)
		r.Post("/summarize", api.handleSummarize)
		r.Post("/summarize/export", api.handleExport)
		r.Get("/runs", api.handleRuns)
	})

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, failureEnvelope("Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, failureEnvelope("Method not allowed"))
	})
	return r
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"message": healthMessage,
		"models":  a.proc.Models().Status(),
	})
}

func (a *API) handleSummarize(w http.ResponseWriter, r *http.Request) {
	rec, err := a.summarizeBody(r)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, successEnvelope(rec, a.now()))
}

// handleExport summarizes the body and returns it as a download.
func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "txt"
	}
	if format != "txt" && format != "xlsx" {
		writeError(w, r, a.logger, common.NewAppError("BAD_REQUEST", msgBadFormat, common.ErrInvalidInput))
		return
	}

	rec, err := a.summarizeBody(r)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	var (
		body        []byte
		contentType string
	)
	switch format {
	case "xlsx":
		body, err = a.exporter.ReportXLSX(rec)
		if err != nil {
			writeError(w, r, a.logger, err)
			return
		}
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		body = []byte(export.FormatText(rec, a.now()))
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="medical-summary.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (a *API) handleRuns(w http.ResponseWriter, r *http.Request) {
	if _, off := a.runs.(repository.NopRunRepository); off {
		writeJSON(w, http.StatusNotFound, failureEnvelope(msgAuditDisabled))
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, r, a.logger, common.NewAppError("BAD_REQUEST", msgBadLimit, common.ErrInvalidInput))
			return
		}
		limit = n
	}
	runs, err := a.runs.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "runs": runs})
}

// summarizeBody decodes and validates the request, then runs the pipeline.
func (a *API) summarizeBody(r *http.Request) (*entity.SummaryRecord, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	var req SummarizeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, errInvalidJSON
	}
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	res, err := a.proc.Process(r.Context(), sourceHTTP, *req.MedicalReport)
	if err != nil {
		return nil, err
	}
	return res.Record, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
