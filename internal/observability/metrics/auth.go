package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of token pairs issued via the password grant",
		},
	)

	TokensRefreshed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_tokens_refreshed_total",
			Help: "Total number of successful refresh-token rotations",
		},
	)

	TokenValidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_token_validations_total",
			Help: "Total number of access token validations",
		},
	)

	TokenValidationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_token_validations_failed_total",
			Help: "Total number of failed access token validations",
		},
	)

	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of authentication failures by operation",
		},
		[]string{"operation"},
	)

	TokensCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_tokens_cleanup_deleted_total",
			Help: "Total number of expired tokens deleted during cleanup",
		},
	)

	TokenInsertRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_token_insert_retries_total",
			Help: "Total number of token inserts retried after an identifier collision",
		},
	)
)
