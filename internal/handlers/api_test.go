package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"ecotech-dashboard/internal/dataset"
	"ecotech-dashboard/internal/export"
	"ecotech-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestAnalytics(t *testing.T) *services.Analytics {
	t.Helper()
	a := services.NewAnalytics(testLogger())
	if err := a.Synthesize(context.Background(), dataset.DefaultSeed); err != nil {
		t.Fatalf("Synthesize() failed: %v", err)
	}
	return a
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func TestNewAPIHandlers(t *testing.T) {
	analytics := createTestAnalytics(t)
	handlers := NewAPIHandlers(analytics, testLogger())

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewAPIHandlers() should set analytics field")
	}
}

func TestAPIHandlers_HandleFacts(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(t), testLogger())

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantRows   int
		wantTotal  int
		wantCode   string
	}{
		{"default limit", "/api/facts", http.StatusOK, 100, 1000, ""},
		{"filtered", "/api/facts?year=2021&product=Eco+Batteries", http.StatusOK, 50, 50, ""},
		{"limited", "/api/facts?region=Europe&limit=7", http.StatusOK, 7, 200, ""},
		{"no match", "/api/facts?year=1999", http.StatusOK, 0, 0, ""},
		{"bad year", "/api/facts?year=abc", http.StatusBadRequest, 0, 0, "BAD_REQUEST"},
		{"bad limit", "/api/facts?limit=100000", http.StatusBadRequest, 0, 0, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			handlers.HandleFacts(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			env := decodeEnvelope(t, w)
			if tt.wantCode != "" {
				if env.Success || env.Error == nil || env.Error.Code != tt.wantCode {
					t.Errorf("expected error code %s, got %+v", tt.wantCode, env.Error)
				}
				return
			}

			if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
				t.Errorf("expected cache-control header, got %q", cc)
			}
			var data struct {
				Rows  []map[string]any `json:"rows"`
				Total int              `json:"total"`
			}
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatal(err)
			}
			if len(data.Rows) != tt.wantRows {
				t.Errorf("expected %d rows, got %d", tt.wantRows, len(data.Rows))
			}
			if data.Total != tt.wantTotal {
				t.Errorf("expected total %d, got %d", tt.wantTotal, data.Total)
			}
		})
	}
}

func TestAPIHandlers_Views(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(t), testLogger())

	tests := []struct {
		name    string
		url     string
		handler http.HandlerFunc
		want    []string
	}{
		{"geo impact", "/api/views/geo-impact", handlers.HandleGeoImpact, []string{`"latitude"`, `"rows":50`}},
		{"production summary", "/api/views/production-summary?region=Asia", handlers.HandleProductionSummary, []string{`"total_production"`, `"region":"Asia"`}},
		{"sales pivot", "/api/views/sales-pivot", handlers.HandleSalesPivot, []string{`"regions"`, `"years":[2020,2021,2022,2023,2024]`}},
		{"region co2", "/api/views/region-co2", handlers.HandleRegionCO2, []string{`"co2_reduction"`, `"North America"`}},
		{"product profiles", "/api/views/product-profiles", handlers.HandleProductProfiles, []string{`"Eco Batteries"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			tt.handler(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected content-type application/json, got %q", ct)
			}
			body := w.Body.String()
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("expected body to contain %s", s)
				}
			}
		})
	}
}

func TestAPIHandlers_ViewErrors(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/views/geo-impact?year=1999", nil)
	w := httptest.NewRecorder()
	handlers.HandleGeoImpact(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %+v", env.Error)
	}
	if !strings.Contains(env.Error.Details, "empty table") {
		t.Errorf("expected details to name the empty table, got %q", env.Error.Details)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/views/sales-pivot?year=oops", nil)
	w = httptest.NewRecorder()
	handlers.HandleSalesPivot(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestAPIHandlers_NotLoaded(t *testing.T) {
	handlers := NewAPIHandlers(services.NewAnalytics(testLogger()), testLogger())

	for _, h := range []http.HandlerFunc{handlers.HandleFacts, handlers.HandleGeoImpact, handlers.HandleFigures} {
		req := httptest.NewRequest(http.MethodGet, "/api/facts", nil)
		w := httptest.NewRecorder()
		h(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
		}
	}
}

func TestAPIHandlers_HandleFigures(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/figures", nil)
	w := httptest.NewRecorder()
	handlers.HandleFigures(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	env := decodeEnvelope(t, w)
	var figs map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &figs); err != nil {
		t.Fatal(err)
	}
	if len(figs) != 12 {
		t.Errorf("expected 12 figures, got %d", len(figs))
	}
}

func TestAPIHandlers_HandleChartSVG(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(t), testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /charts/{name}", handlers.HandleChartSVG)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"bar", "/charts/region-co2", http.StatusOK},
		{"box plot", "/charts/satisfaction-box", http.StatusOK},
		{"unknown", "/charts/pie", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
				t.Errorf("expected content-type image/svg+xml, got %q", ct)
			}
			if !strings.Contains(w.Body.String(), "<svg") {
				t.Error("expected svg body")
			}
		})
	}
}

func TestAPIHandlers_HandleExport(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(t), testLogger())

	tests := []struct {
		format   export.Format
		filename string
		prefix   []byte
	}{
		{export.CSV, "facts.csv", []byte("year,region,product,sales")},
		{export.XLSX, "ecotech.xlsx", []byte("PK")},
		{export.Parquet, "facts.parquet", []byte("PAR1")},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/export/"+tt.filename, nil)
			w := httptest.NewRecorder()

			handlers.HandleExport(tt.format, tt.filename)(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != tt.format.ContentType() {
				t.Errorf("expected content-type %q, got %q", tt.format.ContentType(), ct)
			}
			if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, tt.filename) {
				t.Errorf("expected content-disposition to name %s, got %q", tt.filename, cd)
			}
			if !bytes.HasPrefix(w.Body.Bytes(), tt.prefix) {
				t.Errorf("unexpected body prefix %q", w.Body.Bytes()[:min(8, w.Body.Len())])
			}
		})
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	env := decodeEnvelope(t, w)
	var health map[string]string
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %q", health["status"])
	}
	if health["timestamp"] == "" {
		t.Error("expected timestamp")
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	handlers.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	env := decodeEnvelope(t, w)
	var stats map[string]any
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats["record_count"] != float64(1000) {
		t.Errorf("expected record_count 1000, got %v", stats["record_count"])
	}
	if stats["ready"] != true {
		t.Errorf("expected ready true, got %v", stats["ready"])
	}
}
