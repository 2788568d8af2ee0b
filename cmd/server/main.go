package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/retainhq/retain-backend/internal/config"
	"github.com/retainhq/retain-backend/internal/database"
	"github.com/retainhq/retain-backend/internal/feature"
	"github.com/retainhq/retain-backend/internal/handler"
	"github.com/retainhq/retain-backend/internal/logger"
	"github.com/retainhq/retain-backend/internal/repository"
	"github.com/retainhq/retain-backend/internal/router"
	"github.com/retainhq/retain-backend/internal/scorer"
	"github.com/retainhq/retain-backend/internal/service"
	"github.com/retainhq/retain-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Retain Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Load Feature Schema ───────────────────────────────────────────
	// The schema defines the exact feature vector the scoring service
	// expects. Without it no prediction can be made, so a missing or
	// invalid schema is fatal at startup rather than at first request.
	schema, err := feature.LoadSchema(cfg.MLSchemaPaths)
	if err != nil {
		log.Fatal().Err(err).Strs("paths", cfg.MLSchemaPaths).Msg("Failed to load feature schema")
	}
	log.Info().
		Str("version", schema.Version()).
		Int("features", schema.Len()).
		Msg("Feature schema loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	predictionRepo := repository.NewPredictionRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	datasetRepo := repository.NewExternalDatasetRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	scoringClient := scorer.NewClient(cfg.MLServiceURL, cfg.MLTimeout, log)
	transformer := feature.NewTransformer(schema)

	authService := service.NewAuthService(cfg, rdb)
	adminService := service.NewAdminService(adminRepo, authService)
	studentService := service.NewStudentService(studentRepo, predictionRepo)
	predictionService := service.NewPredictionService(transformer, scoringClient, predictionRepo, rdb, cfg.MLDefaultModel, log)
	dashboardService := service.NewDashboardService(dashboardRepo, rdb, log)
	datasetService := service.NewDatasetService(datasetRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, adminService),
		CollegeAdmin: handler.NewCollegeAdminHandler(adminService),
		Student:      handler.NewStudentHandler(studentService, predictionService, dashboardService, log),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Dataset:      handler.NewDatasetHandler(datasetService),
		Model:        handler.NewModelHandler(predictionService),
		WS:           handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
		System:       handler.NewSystemHandler(log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
