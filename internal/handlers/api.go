package handlers

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ecotech-dashboard/internal/errors"
	"ecotech-dashboard/internal/export"
	"ecotech-dashboard/internal/observability"
	"ecotech-dashboard/internal/services"
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// writeError maps analytics errors onto the response taxonomy.
func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	requestID := observability.GetRequestID(r.Context())
	if stderrors.Is(err, services.ErrNotLoaded) {
		errors.WriteError(w, h.logger, errors.ServiceUnavailable("dataset not loaded"), requestID)
		return
	}
	errors.WriteError(w, h.logger, errors.FromDataset(err, message), requestID)
}

func (h *APIHandlers) parseQuery(w http.ResponseWriter, r *http.Request) (services.Query, bool) {
	q, err := services.ParseQuery(r.URL.Query())
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, err.Error()), observability.GetRequestID(r.Context()))
		return q, false
	}
	return q, true
}

type factsResponse struct {
	Rows  any    `json:"rows"`
	Total int    `json:"total"`
	Limit int    `json:"limit"`
	Title string `json:"title"`
}

func (h *APIHandlers) HandleFacts(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	rows, total, err := h.analytics.Facts(q)
	if err != nil {
		h.writeError(w, r, err, "Failed to filter facts")
		return
	}

	errors.WriteSuccessWithHeaders(w, factsResponse{
		Rows:  rows,
		Total: total,
		Limit: q.Limit,
		Title: q.Title(),
	}, cacheHeaders)
}

// viewHandler serves one aggregate view over the subset the URL
// parameters select.
func viewHandler[T any](h *APIHandlers, name string, fetch func(services.Query) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := h.parseQuery(w, r)
		if !ok {
			return
		}
		data, err := fetch(q)
		if err != nil {
			h.writeError(w, r, err, fmt.Sprintf("Failed to compute %s", name))
			return
		}
		errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
	}
}

func (h *APIHandlers) HandleGeoImpact(w http.ResponseWriter, r *http.Request) {
	viewHandler(h, "geo impact", h.analytics.GeoImpact)(w, r)
}

func (h *APIHandlers) HandleProductionSummary(w http.ResponseWriter, r *http.Request) {
	viewHandler(h, "production summary", h.analytics.ProductionSummary)(w, r)
}

func (h *APIHandlers) HandleSalesPivot(w http.ResponseWriter, r *http.Request) {
	viewHandler(h, "sales pivot", h.analytics.SalesPivot)(w, r)
}

func (h *APIHandlers) HandleRegionCO2(w http.ResponseWriter, r *http.Request) {
	viewHandler(h, "region CO2", h.analytics.RegionCO2)(w, r)
}

func (h *APIHandlers) HandleProductProfiles(w http.ResponseWriter, r *http.Request) {
	viewHandler(h, "product profiles", h.analytics.ProductProfiles)(w, r)
}

func (h *APIHandlers) HandleFigures(w http.ResponseWriter, r *http.Request) {
	figs, err := h.analytics.Figures()
	if err != nil {
		h.writeError(w, r, err, "Failed to load figures")
		return
	}
	errors.WriteSuccessWithHeaders(w, figs, cacheHeaders)
}

func (h *APIHandlers) HandleChartSVG(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	svg, ok := h.analytics.SVG(name)
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound(fmt.Sprintf("chart %q not found", name)), observability.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(svg); err != nil {
		h.logger.Error("write svg", "chart", name, "error", err)
	}
}

// HandleExport returns a handler streaming the dataset in format f.
func (h *APIHandlers) HandleExport(f export.Format, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, err := h.analytics.ExportBundle()
		if err != nil {
			h.writeError(w, r, err, "Failed to export dataset")
			return
		}

		start := time.Now()
		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := export.Write(w, f, bundle); err != nil {
			// Headers are already sent; the client sees a truncated body.
			h.logger.Error("export failed", "format", f, "error", err)
			return
		}
		h.logger.Info("dataset exported", "format", f, "duration", time.Since(start))
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}
	if !h.analytics.Ready() {
		healthData["status"] = "starting"
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
