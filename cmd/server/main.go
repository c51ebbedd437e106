package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/pacadvocate/legtracker-go/internal/analyzer"
	"github.com/pacadvocate/legtracker-go/internal/auth"
	"github.com/pacadvocate/legtracker-go/internal/classify"
	"github.com/pacadvocate/legtracker-go/internal/collector"
	"github.com/pacadvocate/legtracker-go/internal/db"
	"github.com/pacadvocate/legtracker-go/internal/handlers"
	"github.com/pacadvocate/legtracker-go/internal/plan"
	"github.com/pacadvocate/legtracker-go/internal/ratelimit"
	"github.com/pacadvocate/legtracker-go/internal/server"
	"github.com/pacadvocate/legtracker-go/internal/sse"
	"github.com/pacadvocate/legtracker-go/internal/ws"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := server.SetupLogger(os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "postgres://localhost:5432/legtracker?sslmode=disable"
	}

	database, err := db.Connect(ctx, dsn)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Error("migration failed", "err", err)
		os.Exit(1)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret"
		logger.Warn("JWT_SECRET not set, using development default")
	}

	// Init components
	sseHub := sse.NewHub(logger)
	limiter := ratelimit.New()
	classifier := classify.NewClassifier()
	planner := plan.NewGenerator()
	wsManager := ws.NewManager(database, logger)

	frClient := collector.NewClient()
	coll := collector.New(frClient, database, logger)

	analyzerInterval := time.Minute
	if v := os.Getenv("ANALYZER_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			analyzerInterval = d
		}
	}
	loop := analyzer.NewLoop(database, classifier, wsManager, sseHub, logger, analyzerInterval)

	// HTTP handlers
	billHandler := handlers.NewBillHandler(database, classifier, planner, logger)
	classifyHandler := handlers.NewClassifyHandler(classifier, limiter, logger)
	dashHandler := handlers.NewDashboardHandler(database, logger)
	analysisHandler := handlers.NewAnalysisHandler(loop, coll, limiter, logger)
	streamHandler := handlers.NewStreamHandler(sseHub, database)

	// Build router
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(corsMiddleware)

	// Health check
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("pong"))
	})

	// Classification endpoint (rate limited, no auth)
	r.Post("/v1/classify", classifyHandler.Classify)

	// WebSocket live feed (no auth)
	r.Get("/ws", wsManager.HandleWS)

	// API routes (require auth)
	r.Route("/api", func(api chi.Router) {
		api.Use(auth.RequireAuth(jwtSecret))

		// Bills
		api.Post("/bills", billHandler.CreateBill)
		api.Get("/bills", billHandler.ListBills)
		api.Get("/bills/{id}", billHandler.GetBill)
		api.Delete("/bills/{id}", billHandler.DeleteBill)
		api.Post("/bills/{id}/score", billHandler.ScoreBill)
		api.Get("/bills/{id}/financial-impact", billHandler.GetFinancialImpact)
		api.Get("/bills/{id}/implementation-plan", billHandler.GetImplementationPlan)

		// Batch triggers
		api.Post("/analysis/run", analysisHandler.TriggerAnalysis)
		api.Post("/collector/run", analysisHandler.TriggerCollection)

		// Dashboard
		api.Get("/stats", dashHandler.GetStats)
		api.Get("/runs", dashHandler.GetRuns)
		api.Get("/analytics/category-distribution", dashHandler.GetCategoryDistribution)
		api.Get("/analytics/priorities", dashHandler.GetPriorityCounts)
		api.Get("/analytics/financial", dashHandler.GetFinancialSummary)

		// SSE stream
		api.Get("/stream/events", streamHandler.HandleSSE)
	})

	// Start background goroutines
	go server.RunWithRecovery(ctx, logger, "analyzer-loop", func(ctx context.Context) {
		loop.Run(ctx)
	})

	collectorInterval := 6 * time.Hour
	if v := os.Getenv("COLLECTOR_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			collectorInterval = d
		}
	}
	go server.RunWithRecovery(ctx, logger, "collector-loop", func(ctx context.Context) {
		coll.Run(ctx, collectorInterval)
	})

	// Start HTTP server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE + WebSocket need unlimited write time
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel() // stop background goroutines

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "err", err)
		}
	}()

	logger.Info("server starting", "port", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// corsMiddleware allows the dashboard frontend to call the API from another
// origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
