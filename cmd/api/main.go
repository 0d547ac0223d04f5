package main

import (
	"context"
	"net/http"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/myhoard/backend/internal/auth/cleanup"
	authhttp "github.com/myhoard/backend/internal/auth/http"
	authrepo "github.com/myhoard/backend/internal/auth/repository"
	authservice "github.com/myhoard/backend/internal/auth/service"
	collectionhttp "github.com/myhoard/backend/internal/collection/http"
	collectionrepo "github.com/myhoard/backend/internal/collection/repository"
	collectionservice "github.com/myhoard/backend/internal/collection/service"
	"github.com/myhoard/backend/internal/common/clock"
	"github.com/myhoard/backend/internal/common/config"
	commoncrypto "github.com/myhoard/backend/internal/common/crypto"
	commondb "github.com/myhoard/backend/internal/common/db"
	commonhttp "github.com/myhoard/backend/internal/common/http"
	"github.com/myhoard/backend/internal/common/logger"
	"github.com/myhoard/backend/internal/common/server"
	userrepo "github.com/myhoard/backend/internal/user/repository"
)

const serviceName = "api"

func main() {
	log, err := logger.New(getLogDir(), serviceName, os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	pool := commondb.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	clk := clock.NewRealClock()
	generator := commoncrypto.NewUUIDGenerator()
	hasher := commoncrypto.NewBcryptHasher()

	tokenStore, redisClient := buildTokenStore(cfg, pool, clk, log)

	users := userrepo.NewPgRepository(pool)
	tokens := authservice.NewTokenService(users, tokenStore, hasher, generator, clk, cfg.KeepAliveTime, log)

	collections := collectionrepo.NewPgCollectionRepository(pool)
	items := collectionrepo.NewPgItemRepository(pool)
	collectionSvc := collectionservice.NewCollectionService(collections, items, generator, clk, log)

	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	go cleanup.StartTokenCleanup(cleanupCtx, tokenStore, log)

	mux := http.NewServeMux()
	withTimeout := commonhttp.WithTimeout(cfg.RequestTimeout)

	authMux := http.NewServeMux()
	authHandler := authhttp.NewHandler(tokens, log)
	authHandler.Register(authMux)
	mux.Handle("/oauth", withTimeout(authMux.ServeHTTP))
	mux.Handle("/api/users", withTimeout(authMux.ServeHTTP))

	requireAuth := authhttp.RequireAuth(tokens, log)
	collectionMux := http.NewServeMux()
	collectionHandler := collectionhttp.NewHandler(collectionSvc, log)
	collectionHandler.Register(collectionMux)
	mux.Handle("/api/collections", requireAuth(withTimeout(collectionMux.ServeHTTP)))
	mux.Handle("/api/collections/", requireAuth(withTimeout(collectionMux.ServeHTTP)))
	mux.Handle("/api/items/", requireAuth(withTimeout(collectionMux.ServeHTTP)))

	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := server.NewServer(
		server.DefaultServerConfig(cfg.HTTPPort),
		commonhttp.BuildBaseHandler(log, mux),
	)

	hooks := []server.ShutdownHook{
		func(ctx context.Context) error {
			cancelCleanup()
			return nil
		},
	}
	if redisClient != nil {
		hooks = append(hooks, func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	server.StartWithGracefulShutdownAndHooks(httpServer, log, serviceName, hooks)
}

// buildTokenStore selects the token backend. Users, collections and items
// always live in Postgres; only the token records move to Redis when
// TOKEN_STORE=redis.
func buildTokenStore(cfg config.Config, pool *pgxpool.Pool, clk clock.Clock, log *logger.Logger) (authrepo.TokenStore, *redis.Client) {
	if cfg.TokenStore == config.StoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		log.Infof("token store: redis at %s", cfg.RedisAddr)
		return authrepo.NewRedisTokenStore(client, cfg.KeepAliveTime), client
	}

	log.Infof("token store: postgres")
	return authrepo.NewPgTokenStore(pool, cfg.KeepAliveTime, clk), nil
}

func getLogDir() string {
	if dir := os.Getenv("LOG_DIR"); dir != "" {
		return dir
	}
	return "logs"
}
