package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evyataryagoni/iplocator/internal/config"
	"github.com/evyataryagoni/iplocator/internal/handler"
	"github.com/evyataryagoni/iplocator/internal/limiter"
	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/metrics"
	"github.com/evyataryagoni/iplocator/internal/resolver"
	"github.com/evyataryagoni/iplocator/internal/router"
	"github.com/evyataryagoni/iplocator/internal/service"
	"github.com/evyataryagoni/iplocator/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	appConfig, err := config.Load()
	if err != nil {
		logger.NewDefault().Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize components
	appLogger := setupLogger(appConfig)
	dataStore := setupDataStore(appConfig, appLogger)
	ipResolver := setupResolver(appConfig, appLogger)

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	metricsCollector := setupMetrics(appLogger)

	// Build application layers; the service owns the store and the resolver
	locatorService := service.NewLocatorService(dataStore, ipResolver, metricsCollector, appLogger, service.Options{
		PersistFallback: appConfig.CacheFallback,
	})
	defer locatorService.Close()

	locatorHandler := handler.NewLocatorHandler(locatorService, appLogger)
	appRouter := router.SetupRouter(locatorHandler, rateLimiter, metricsCollector, prometheus.DefaultGatherer, appLogger)

	startServer(appConfig, appRouter, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	})

	appLogger.Info().Msg("Starting IP locator server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("datastore_type", appConfig.DatastoreType).
		Str("db_driver", appConfig.DBDriver).
		Int("lru_size", appConfig.LRUSize).
		Str("resolver_type", appConfig.ResolverType).
		Bool("cache_fallback", appConfig.CacheFallback).
		Str("seed_path", appConfig.SeedPath).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Dur("rate_limit_window", appConfig.RateLimitWindow).
		Msg("Configuration loaded")

	return appLogger
}

// setupDataStore opens the configured backend, wrapped in an LRU when enabled
// Seeding on start is opt-in: rows only come from SEED_PATH when it is set
func setupDataStore(appConfig *config.Config, log *logger.Logger) store.Store {
	dataStore, err := store.New(storeConfig(appConfig))
	if err != nil {
		log.Fatal().Err(err).Str("type", appConfig.DatastoreType).Msg("Failed to initialize datastore")
	}
	log.Info().Str("type", appConfig.DatastoreType).Msg("Datastore initialized")

	if appConfig.SeedPath != "" {
		seedDataStore(context.Background(), appConfig.SeedPath, dataStore, log)
	}

	return dataStore
}

// seedDataStore imports a CSV; a bad seed file is logged and the server still starts
func seedDataStore(ctx context.Context, path string, dataStore store.Store, log *logger.Logger) {
	result, err := store.LoadCSV(ctx, path, dataStore)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to load seed data")
		return
	}

	log.Info().
		Str("path", path).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int("invalid", result.Invalid).
		Msg("Seed data loaded")
}

func storeConfig(appConfig *config.Config) store.Config {
	return store.Config{
		Type: appConfig.DatastoreType,
		SQL: store.SQLConfig{
			Driver:   appConfig.DBDriver,
			User:     appConfig.DBUser,
			Password: appConfig.DBPassword,
			Host:     appConfig.DBHost,
			Port:     appConfig.DBPort,
			Database: appConfig.DBName,
			SSLMode:  appConfig.DBSSLMode,
		},
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
		LRUSize:       appConfig.LRUSize,
	}
}

// setupResolver initializes the geolocation source
func setupResolver(appConfig *config.Config, log *logger.Logger) resolver.Resolver {
	ipResolver, err := resolver.New(resolver.Config{
		Type:         appConfig.ResolverType,
		BaseURL:      appConfig.ResolverURL,
		Token:        appConfig.ResolverToken,
		Timeout:      appConfig.ResolverTimeout,
		DatabasePath: appConfig.GeoIPDBPath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize resolver")
	}

	log.Info().Str("resolver", ipResolver.Name()).Msg("Resolver initialized")
	return ipResolver
}

// setupRateLimiter initializes the rate limiter
// Supports in-memory and Redis-based rate limiting
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	rateLimiter, err := limiter.New(limiter.Config{
		Type:          appConfig.RateLimitType,
		Limit:         appConfig.RateLimit,
		Window:        appConfig.RateLimitWindow,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Int("limit", appConfig.RateLimit).
		Dur("window", appConfig.RateLimitWindow).
		Msg("Rate limiter initialized")

	return rateLimiter
}

// setupMetrics initializes the Prometheus metrics collector
func setupMetrics(log *logger.Logger) *metrics.Metrics {
	metricsCollector := metrics.New(prometheus.DefaultRegisterer)
	log.Info().Msg("Metrics initialized")
	return metricsCollector
}

// startServer serves until SIGINT/SIGTERM, then drains in-flight requests
func startServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) {
	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           appRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("port", appConfig.Port).
			Str("lookup_page", "http://localhost:"+appConfig.Port+"/").
			Str("health_check", "http://localhost:"+appConfig.Port+"/health").
			Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
			Msg("Server is running")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
