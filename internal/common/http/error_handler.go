package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/myhoard/backend/internal/common/constants"
	commonerrors "github.com/myhoard/backend/internal/common/errors"
	"github.com/myhoard/backend/internal/common/httpmetrics"
	"github.com/myhoard/backend/internal/common/logger"
	"github.com/myhoard/backend/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()
	traceID := getTraceIDFromContext(ctx)

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		h.handleDomainError(w, r, domainErr, traceID)
		return
	}

	logFields := logger.Fields{
		"error":  err.Error(),
		"action": "unhandled_error",
	}
	if traceID != "" {
		logFields["trace_id"] = traceID
		w.Header().Set("X-Trace-ID", traceID)
	}

	h.log.WithFields(ctx, logFields).Errorf("unhandled error: %v", err)

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(http.StatusInternalServerError),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, http.StatusInternalServerError, commonerrors.ErrInternalError.Code(), "internal server error", nil, traceID)
}

func (h *ErrorHandler) handleDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError, traceID string) {
	ctx := r.Context()
	status := err.HTTPStatus()

	logFields := logger.Fields{
		"error_code": err.Code(),
		"category":   string(err.Category()),
		"status":     status,
		"action":     "domain_error",
	}
	if traceID != "" {
		logFields["trace_id"] = traceID
	}

	if h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(ctx, logFields).Debugf("domain error: %s", err.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(err.Category()),
		err.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	if traceID != "" {
		w.Header().Set("X-Trace-ID", traceID)
	}

	WriteErrorEnvelope(w, status, err.Code(), err.Message(), err.Details(), traceID)
}

func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	handler := NewErrorHandler(log)
	handler.HandleError(w, r, err)
}

func getTraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	val := ctx.Value(constants.TraceIDKey)
	if val == nil {
		return ""
	}
	traceID, ok := val.(string)
	if !ok || traceID == "" {
		return ""
	}
	return traceID
}
