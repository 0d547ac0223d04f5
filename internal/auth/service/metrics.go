package service

import (
	"github.com/myhoard/backend/internal/observability/metrics"
)

func incrementTokensIssued() {
	metrics.TokensIssued.Inc()
}

func incrementTokensRefreshed() {
	metrics.TokensRefreshed.Inc()
}

func incrementTokenValidations() {
	metrics.TokenValidationsTotal.Inc()
}

func incrementTokenValidationsFailed() {
	metrics.TokenValidationsFailed.Inc()
}

func incrementAuthFailures(operation string) {
	metrics.AuthFailures.WithLabelValues(operation).Inc()
}

func incrementTokenInsertRetries() {
	metrics.TokenInsertRetries.Inc()
}
