package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"ecotech-dashboard/internal/config"
	"ecotech-dashboard/internal/dataset"
	"ecotech-dashboard/internal/middleware"
	"ecotech-dashboard/internal/observability"
	"ecotech-dashboard/internal/server"
	"ecotech-dashboard/internal/services"
	"ecotech-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	loadTimeout   = 30 * time.Second
	cacheMaxAge   = "public, max-age=300"
	previewRows   = 5
)

// Template handler functions that can access the template functions
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard(dataset.DefaultCatalog()).Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// loadDataset fills analytics from the configured CSV file, or
// synthesizes the table from the configured seed.
func loadDataset(ctx context.Context, analytics *services.Analytics, cfg config.DatasetConfig) error {
	if cfg.CSVFile != "" {
		return analytics.LoadFromCSV(ctx, cfg.CSVFile)
	}
	return analytics.Synthesize(ctx, cfg.Seed)
}

func newHandler(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger) (http.Handler, error) {
	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(analytics, logger, templateHandlers)

	compression, err := middleware.Compression()
	if err != nil {
		return nil, err
	}

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		compression,
	)

	return middlewareChain(srv), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	analytics := services.NewAnalytics(logger)
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	start := time.Now()
	if err := loadDataset(ctx, analytics, cfg.Dataset); err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("dataset loaded successfully", "duration", time.Since(start))

	if table, err := analytics.Table(); err == nil {
		if preview, err := dataset.Preview(table, previewRows); err == nil {
			logger.Debug("dataset preview\n" + preview)
		}
	}

	handler, err := newHandler(cfg, analytics, logger)
	if err != nil {
		logger.Error("failed to build handler", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterReloadHook("dataset", func(ctx context.Context) error {
		return loadDataset(ctx, analytics, cfg.Dataset)
	})
	gracefulServer.RegisterShutdownHook("analytics", func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "stats", analytics.Stats())
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
