// cmd/api/main.go
// Main entry point for the matching API
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imadgeboyega/kiekky-matching/internal/auth"
	"github.com/imadgeboyega/kiekky-matching/internal/common/database"
	"github.com/imadgeboyega/kiekky-matching/internal/common/logging"
	"github.com/imadgeboyega/kiekky-matching/internal/config"
	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

func main() {
	// 1. Load environment variables
	if err := config.LoadDotEnv(); err != nil {
		logging.Warn().Err(err).Msg("Could not read .env file, using environment variables")
	}

	// 2. Load and validate configuration
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
	logging.Info().Str("environment", cfg.Environment).Msg("Starting Kiekky matching API")

	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("Configuration validation failed")
	}

	scoring, err := config.LoadScoring(cfg.MatchingConfigPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Matching configuration invalid")
	}
	logging.Info().
		Interface("weights", scoring.Weights).
		Int("workers", scoring.Workers).
		Bool("rewound_swipes_exclude", scoring.RewoundSwipesExclude).
		Msg("Matching configuration loaded")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStartup()

	// 3. Connect to PostgreSQL
	db, err := database.NewPostgresDB(startupCtx, cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()
	logging.Info().Msg("Connected to PostgreSQL")

	// 4. Connect to Redis (optional, only backs the pool cache)
	var redisClient *redis.Client
	if cfg.RedisURL != "" && scoring.PoolCacheTTL > 0 {
		redisClient, err = database.NewRedisClient(startupCtx, cfg.RedisURL)
		if err != nil {
			logging.Warn().Err(err).Msg("Redis unavailable, continuing without pool cache")
			redisClient = nil
		} else {
			defer redisClient.Close()
			logging.Info().Dur("ttl", scoring.PoolCacheTTL).Msg("Candidate pool cache enabled")
		}
	}

	// 5. Initialize matching
	breakerCfg := matching.DefaultBreakerConfig("matching-store")
	breakerCfg.FailureThreshold = uint32(cfg.BreakerFailureThreshold)
	breakerCfg.Timeout = cfg.BreakerTimeout

	repo := matching.NewBreakerRepository(matching.NewPostgresRepository(db), breakerCfg)

	var profiles matching.ProfileStore = repo
	if redisClient != nil {
		profiles = matching.NewCachedProfileStore(repo, matching.NewRedisPoolCache(redisClient), scoring.PoolCacheTTL)
	}

	engine, err := matching.NewMatchingEngine(profiles, repo, repo, scoring)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create matching engine")
	}
	matchingHandler := matching.NewHandler(engine)

	// 6. Setup routes
	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.RealIP, requestContext, requestLogger, middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	health := &healthChecker{db: db, redis: redisClient}
	router.HandleFunc("/health", health.ServeHTTP).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	matching.RegisterRoutes(router, matchingHandler, auth.NewMiddleware(cfg.JWTSecret), matching.RateLimit{
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	})

	// 7. Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logging.Info().Str("signal", sig.String()).Msg("Shutting down server")

	// Graceful server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
		return
	}
	logging.Info().Msg("Server exited gracefully")
}
