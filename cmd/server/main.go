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

	"github.com/lokal-app/lokal-backend/config"
	"github.com/lokal-app/lokal-backend/internal/app/controller"
	"github.com/lokal-app/lokal-backend/internal/app/repository"
	"github.com/lokal-app/lokal-backend/internal/app/service"
	"github.com/lokal-app/lokal-backend/internal/db"
	"github.com/lokal-app/lokal-backend/internal/observability"
	"github.com/lokal-app/lokal-backend/internal/router"
	"github.com/lokal-app/lokal-backend/internal/storage"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"github.com/lokal-app/lokal-backend/pkg/util"
)

const serviceName = "lokal-directory"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	format := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		format = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      format,
		EnableColor: format == "console",
	})

	logger.Info("Starting business directory server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	database := db.GetDB()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.Seed(database); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Metrics
	registry := observability.NewMetricsRegistry()
	httpMetrics := observability.NewHTTPMetrics(registry, serviceName)
	importMetrics := observability.NewImportMetrics(registry, serviceName)

	// Repositories
	listingRepo := repository.NewListingRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	featureRepo := repository.NewFeatureRepository(database)
	tm := repository.NewTransactionManager(database)

	// Services
	geocoder := util.NewGeocoder(cfg.Geocoder)
	if cfg.Geocoder.AccessToken == "" {
		logger.Warn("MAPBOX_ACCESS_TOKEN not set, bulk import geocoding will fail")
	}
	businessService := service.NewBusinessService(listingRepo, categoryRepo, featureRepo)
	onboardingService := service.NewOnboardingService(tm)
	bulkImportService := service.NewBulkImportService(tm, geocoder, cfg.Geocoder.Timeout, importMetrics)

	// Controllers
	businessController := controller.NewBusinessController(businessService)
	onboardingController := controller.NewOnboardingController(onboardingService, bulkImportService)
	uploadController := controller.NewUploadController(storage.NewS3Storage(cfg.S3))

	r := router.NewRouter(
		businessController,
		onboardingController,
		uploadController,
		httpMetrics,
		cfg,
	)
	engine := r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
