package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/myhoard/backend/internal/common/constants"
	commonerrors "github.com/myhoard/backend/internal/common/errors"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	HTTPPort       string
	DatabaseURL    string
	TokenStore     string
	RedisAddr      string
	RedisPassword  string
	KeepAliveTime  time.Duration
	RequestTimeout time.Duration
}

// Load reads the process configuration once at startup. AUTH_KEEP_ALIVE_TIME
// is expressed in seconds and drives both token expiry cutoffs and the value
// of expires_in returned to clients.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:       getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		TokenStore:     getEnv("TOKEN_STORE", StorePostgres),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		KeepAliveTime:  getSecondsEnv("AUTH_KEEP_ALIVE_TIME", constants.DefaultKeepAliveTime),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
	}

	switch cfg.TokenStore {
	case StorePostgres, StoreRedis:
	default:
		return Config{}, fmt.Errorf("unsupported TOKEN_STORE value: %q", cfg.TokenStore)
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}
	cfg.DatabaseURL = databaseURL

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", commonerrors.ErrMissingRequiredEnv.WithDetails(map[string]any{"key": key})
	}
	return v, nil
}

func getSecondsEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
