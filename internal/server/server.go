package server

import (
	"log/slog"
	"net/http"

	"ecotech-dashboard/internal/export"
	"ecotech-dashboard/internal/handlers"
	"ecotech-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/facts", s.apiHandlers.HandleFacts)
	s.mux.HandleFunc("GET /api/figures", s.apiHandlers.HandleFigures)
	s.mux.HandleFunc("GET /api/views/geo-impact", s.apiHandlers.HandleGeoImpact)
	s.mux.HandleFunc("GET /api/views/production-summary", s.apiHandlers.HandleProductionSummary)
	s.mux.HandleFunc("GET /api/views/sales-pivot", s.apiHandlers.HandleSalesPivot)
	s.mux.HandleFunc("GET /api/views/region-co2", s.apiHandlers.HandleRegionCO2)
	s.mux.HandleFunc("GET /api/views/product-profiles", s.apiHandlers.HandleProductProfiles)

	// Server-rendered charts and downloads
	s.mux.HandleFunc("GET /charts/{name}", s.apiHandlers.HandleChartSVG)
	s.mux.HandleFunc("GET /export/facts.csv", s.apiHandlers.HandleExport(export.CSV, "facts.csv"))
	s.mux.HandleFunc("GET /export/ecotech.xlsx", s.apiHandlers.HandleExport(export.XLSX, "ecotech.xlsx"))
	s.mux.HandleFunc("GET /export/facts.parquet", s.apiHandlers.HandleExport(export.Parquet, "facts.parquet"))

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/charts", s.sseHandlers.HandleCharts)
	s.mux.HandleFunc("GET /sse/filter", s.sseHandlers.HandleFilter)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
