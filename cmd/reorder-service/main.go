package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stocklens/stocklens-backend/internal/reorder/events"
	reorderhandler "github.com/stocklens/stocklens-backend/internal/reorder/handler"
	reorderrepo "github.com/stocklens/stocklens-backend/internal/reorder/repository"
	"github.com/stocklens/stocklens-backend/internal/reorder/service"
	reportshandler "github.com/stocklens/stocklens-backend/internal/reports/handler"
	reportsrepo "github.com/stocklens/stocklens-backend/internal/reports/repository"
	"github.com/stocklens/stocklens-backend/pkg/config"
	"github.com/stocklens/stocklens-backend/pkg/database"
	"github.com/stocklens/stocklens-backend/pkg/httputil"
	"github.com/stocklens/stocklens-backend/pkg/logger"
	"github.com/stocklens/stocklens-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("reorder-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("reorder-service", cfg.Server.Environment)
	log.Info().Msg("starting Reorder Service")

	// Connect to the transactional source store (read-only)
	sourceDB, err := database.NewSource(&cfg.Source, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to source store")
	}
	defer sourceDB.Close()

	// Open the threshold store and run its migration
	thresholdDB, err := database.NewThreshold(&cfg.Threshold, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open threshold store")
	}
	defer thresholdDB.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewReorderEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	thresholdRepo := reorderrepo.NewThresholdRepository(thresholdDB)
	dimensionRepo := reorderrepo.NewDimensionRepository(sourceDB)
	stockRepo := reorderrepo.NewStockRepository(sourceDB, cfg.Sync.RetailLocationID)
	refdataRepo := reorderrepo.NewRefDataRepository(sourceDB)
	reportsRepo := reportsrepo.NewReportsRepository(sourceDB, cfg.Sync.CompanyID)

	if err := thresholdRepo.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate threshold store")
	}

	// Initialize services
	syncService := service.NewSyncService(
		dimensionRepo,
		thresholdRepo,
		publisher,
		cfg.Sync.BatchSize,
		cfg.Sync.DefaultReorderLevel,
		log,
	)
	statusService := service.NewStatusService(stockRepo, thresholdRepo, log)

	// Initialize handlers
	thresholdHandler := reorderhandler.NewThresholdHandler(thresholdRepo, refdataRepo, syncService, publisher, log)
	statusHandler := reorderhandler.NewStatusHandler(statusService, log)
	reportsHandler := reportshandler.NewReportsHandler(reportsRepo, log)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httputil.ActorMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"service":   "reorder-service",
			"source":    sourceDB.Health(r.Context()),
			"threshold": thresholdDB.Health(r.Context()),
			"rabbitmq":  rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/reorder", func(r chi.Router) {
			r.Post("/sync", thresholdHandler.Sync)
			r.Get("/filters", thresholdHandler.Filters)

			r.Route("/levels", func(r chi.Router) {
				r.Get("/", thresholdHandler.List)
				r.Put("/", thresholdHandler.BulkUpdate)
				r.Put("/{id}", thresholdHandler.Update)
			})

			r.Route("/status", func(r chi.Router) {
				r.Get("/", statusHandler.Classified)
				r.Get("/summary", statusHandler.Summary)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/supplier-products", reportsHandler.SupplierProducts)
			r.Get("/product-suppliers", reportsHandler.ProductSuppliers)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
