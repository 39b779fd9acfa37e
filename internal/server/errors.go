package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
)

// Client-facing failure messages.
const (
	msgNoReport      = "No medical report provided"
	msgEmptyReport   = "Empty medical report"
	msgInvalidJSON   = "Request body must be valid JSON"
	msgTooLarge      = "Request body too large"
	msgRateLimited   = "Too many requests"
	msgTimeout       = "Request timed out"
	msgInternal      = "Internal server error"
	msgBadFormat     = "format must be txt or xlsx"
	msgBadLimit      = "limit must be a positive integer"
	msgAuditDisabled = "Run history is not enabled"
)

var errInvalidJSON = errors.New("invalid json body")

// classify maps an error to its HTTP status and client message. Internal
// details never reach the message.
func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, msgTooLarge
	case errors.Is(err, common.ErrEmptyInput):
		return http.StatusBadRequest, msgEmptyReport
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, msgNoReport
	case errors.Is(err, errInvalidJSON):
		return http.StatusBadRequest, msgInvalidJSON
	case errors.Is(err, common.ErrTimeout):
		return http.StatusGatewayTimeout, msgTimeout
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) && errors.Is(appErr, common.ErrInvalidInput) {
		return http.StatusBadRequest, appErr.Message
	}
	return http.StatusInternalServerError, msgInternal
}

// writeError writes the failure envelope for err.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, msg := classify(err)
	log := common.LoggerFromContext(r.Context(), logger)
	if status >= http.StatusInternalServerError {
		log.Error("http.request.failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		log.Info("http.request.rejected", "path", r.URL.Path, "status", status, "reason", err.Error())
	}
	writeJSON(w, status, failureEnvelope(msg))
}
