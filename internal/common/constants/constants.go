package constants

import "time"

const (
	UsernameMinLength = 3
	UsernameMaxLength = 32
	PasswordMinLength = 8
	PasswordMaxLength = 72

	CollectionNameMinLength = 3
	CollectionNameMaxLength = 50
	DescriptionMaxLength    = 250

	DefaultTokenScope = "read+write"

	// Radius applied when max_range is absent, in the distance units of the
	// store (meters for earthdistance).
	DefaultGeoMaxRange = 10000

	DefaultMaxRequestSize = 1 << 20

	DefaultKeepAliveTime = 3600 * time.Second
	CleanupInterval      = time.Hour

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultRequestTimeout = 5 * time.Second

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
