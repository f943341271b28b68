package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/carecapacity/internal/adapters/cache"
	"github.com/zatekoja/carecapacity/internal/adapters/database"
	"github.com/zatekoja/carecapacity/internal/adapters/events"
	"github.com/zatekoja/carecapacity/internal/api/handlers"
	"github.com/zatekoja/carecapacity/internal/api/routes"
	"github.com/zatekoja/carecapacity/internal/application/services"
	"github.com/zatekoja/carecapacity/internal/domain/providers"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
	"github.com/zatekoja/carecapacity/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/carecapacity/internal/infrastructure/clients/redis"
	"github.com/zatekoja/carecapacity/internal/infrastructure/observability"
	"github.com/zatekoja/carecapacity/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		// Continue without Redis - the application can work without caching
		log.Warn().Err(err).Msg("Failed to initialize Redis client")
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for real-time invalidation
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("Event bus initialized successfully")
	} else {
		log.Info().Msg("Event bus disabled (Redis not available)")
	}

	// Initialize adapters

	baseFacilityAdapter := database.NewFacilityAdapter(pgClient)

	// Wrap with caching if Redis is available
	var facilityAdapter repositories.FacilityRepository
	if cacheProvider != nil {
		facilityAdapter = database.NewCachedFacilityAdapter(baseFacilityAdapter, cacheProvider, metrics)
		log.Info().Msg("Facility adapter wrapped with caching layer")
	} else {
		facilityAdapter = baseFacilityAdapter
		log.Warn().Msg("Facility adapter running without cache (Redis unavailable)")
	}

	recordAdapter := database.NewRecordAdapter(pgClient)

	// Initialize services

	forecastService := services.NewForecastService(facilityAdapter, recordAdapter, cacheProvider, cfg.Forecast)
	forecastService.SetMetrics(metrics)
	alertService := services.NewAlertService(facilityAdapter, forecastService)
	alertService.SetMetrics(metrics)
	comparisonService := services.NewComparisonService(facilityAdapter, recordAdapter, forecastService, cfg.Forecast.MaxCompareWorkers)
	dashboardService := services.NewDashboardService(facilityAdapter, recordAdapter, forecastService, alertService)
	facilityService := services.NewFacilityService(facilityAdapter, forecastService, eventBus)
	recordService := services.NewRecordService(facilityAdapter, recordAdapter, forecastService, eventBus)

	// Initialize cache invalidation service
	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start cache invalidation service")
		} else {
			log.Info().Msg("Cache invalidation service started successfully")
		}
	}

	// Initialize handlers

	facilityHandler := handlers.NewFacilityHandler(facilityService)
	recordHandler := handlers.NewRecordHandler(recordService)
	forecastHandler := handlers.NewForecastHandler(forecastService)
	alertHandler := handlers.NewAlertHandler(alertService)
	comparisonHandler := handlers.NewComparisonHandler(comparisonService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Set up router

	router := routes.NewRouter(
		facilityHandler,
		recordHandler,
		forecastHandler,
		alertHandler,
		comparisonHandler,
		dashboardHandler,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	// Stop the invalidation consumer before its event source goes away
	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}
