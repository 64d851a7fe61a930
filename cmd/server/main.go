package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/roomtreat/internal/analysis"
	"github.com/RMahshie/roomtreat/internal/api"
	"github.com/RMahshie/roomtreat/internal/config"
	"github.com/RMahshie/roomtreat/internal/metrics"
	"github.com/RMahshie/roomtreat/internal/repository/postgres"
	"github.com/RMahshie/roomtreat/internal/storage"
	"github.com/RMahshie/roomtreat/pkg/models"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Configure zerolog for structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(cfg.Server.LogLevel)
	if !cfg.Server.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.DefaultContextLogger = &log.Logger

	ctx := context.Background()
	m := metrics.New()

	// Measurement archive
	store, err := storage.New(ctx, cfg.Storage.Backend, cfg.Storage.ObjectStorage())
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("Failed to initialize measurement storage")
	}
	if store != nil {
		store = storage.WithBreaker(cfg.Storage.Backend, store, cfg.Storage.Breaker())
		log.Info().Str("backend", cfg.Storage.Backend).Str("bucket", cfg.Storage.Bucket).Msg("Measurement archive enabled")
	}

	deps := api.Dependencies{
		Store:        store,
		MaxBodyBytes: cfg.Analysis.MaxMeasurementBytes,
	}
	opts := analysis.Options{
		Limits:  cfg.Analysis.Limits(),
		Cutoff:  cfg.Analysis.ModeCutoff,
		Metrics: m,
	}

	// Optional persistence
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		measurements := postgres.NewPostgresMeasurementRepository(db)
		deps.Projects = postgres.NewPostgresProjectRepository(db)
		deps.Measurements = measurements
		opts.Loader = measurements
		log.Info().Msg("Database connected, project routes enabled")
	} else {
		log.Warn().Msg("DATABASE_URL not set, projects and stored measurements are disabled")
	}

	svc, err := analysis.NewService(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create analysis service")
	}
	deps.Analysis = svc

	// Create Chi router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger(m))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Handle("/metrics", m.Handler())

	// Create Huma API
	humaConfig := huma.DefaultConfig("Room Treatment API", version)
	humaConfig.DocsPath = "/api/docs"
	humaAPI := humachi.New(router, humaConfig)

	// Register health endpoint
	huma.Register(humaAPI, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{}
		resp.Body.Status = "healthy"
		resp.Body.Version = version
		resp.Body.Time = time.Now()
		return resp, nil
	})

	api.RegisterRoutes(humaAPI, deps)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Env).Msg("Starting room treatment API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
