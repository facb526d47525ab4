package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"ecotech-dashboard/internal/models"
	"ecotech-dashboard/internal/services"
)

const maxTableRows = 50

var factsTableTemplate = template.Must(template.New("factsTable").Parse(`
<div id="facts-table">
<p class="table-caption">{{.Title}}: {{.Total}} rows{{if gt .Total (len .Rows)}}, showing {{len .Rows}}{{end}}</p>
<table class="modern-table">
<thead><tr><th>Year</th><th>Region</th><th>Product</th><th>Sales</th><th>Satisfaction</th><th>CO2 Reduction</th><th>Production Cost</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.Year}}</td>
<td>{{.Region}}</td>
<td><span class="category-badge">{{.Product}}</span></td>
<td><strong>{{.Sales}}</strong></td>
<td>{{printf "%.2f" .CustomerSatisfaction}}</td>
<td>{{printf "%.1f" .CO2Reduction}}</td>
<td>{{printf "%.0f" .ProductionCost}}</td>
</tr>{{else}}<tr><td colspan="7">No rows match the selected filters</td></tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// FilterSignals are the dashboard's filter inputs as datastar sends them.
// Year arrives as a string from select inputs and as a number otherwise.
type FilterSignals struct {
	Year    any    `json:"year"`
	Region  string `json:"region"`
	Product string `json:"product"`
}

func (s FilterSignals) query() (services.Query, error) {
	q := services.Query{
		Region:  strings.TrimSpace(s.Region),
		Product: strings.TrimSpace(s.Product),
		Limit:   maxTableRows,
	}
	switch y := s.Year.(type) {
	case nil:
	case float64:
		q.Year = int(y)
		if float64(q.Year) != y || q.Year <= 0 {
			return services.Query{}, fmt.Errorf("invalid year %v", y)
		}
	case string:
		y = strings.TrimSpace(y)
		if y == "" {
			break
		}
		year, err := strconv.Atoi(y)
		if err != nil || year <= 0 {
			return services.Query{}, fmt.Errorf("invalid year %q", y)
		}
		q.Year = year
	default:
		return services.Query{}, fmt.Errorf("invalid year %v", y)
	}
	return q, nil
}

type tableData struct {
	Title string
	Total int
	Rows  []models.FactRow
}

func renderFactsTable(q services.Query, rows []models.FactRow, total int) (string, error) {
	var buf strings.Builder
	err := factsTableTemplate.Execute(&buf, tableData{Title: q.Title(), Total: total, Rows: rows})
	return buf.String(), err
}

func statusElement(id, message string) string {
	return fmt.Sprintf(`<div id="%s">%s</div>`, id, template.HTMLEscapeString(message))
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) error {
	jsonData, err := json.Marshal(signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}
	return sse.PatchSignals(jsonData)
}

// HandleCharts sends every precomputed figure as the figures signal.
func (h *SSEHandlers) HandleCharts(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	figs, err := h.analytics.Figures()
	if err != nil {
		h.logger.Error("load figures", "error", err)
		sse.PatchElements(statusElement("charts-status", "Dataset not available"))
		return
	}

	if err := h.patchSignals(sse, map[string]any{"figures": figs}); err != nil {
		h.logger.Error("patch figures", "error", err)
		return
	}
	sse.PatchElements(statusElement("charts-status", fmt.Sprintf("%d charts loaded", len(figs))))
}

// HandleFilter reads the filter signals and patches the facts table and
// the parallel coordinates figure for the selected subset.
func (h *SSEHandlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	var signals FilterSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "invalid signals", http.StatusBadRequest)
		return
	}
	q, err := signals.query()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := h.patchFiltered(sse, q); err != nil {
		h.logger.Error("patch filtered view", "error", err)
		sse.PatchElements(statusElement("facts-table", "Dataset not available"))
	}
}

func (h *SSEHandlers) patchFiltered(sse *datastar.ServerSentEventGenerator, q services.Query) error {
	rows, total, err := h.analytics.Facts(q)
	if err != nil {
		return err
	}
	html, err := renderFactsTable(q, rows, total)
	if err != nil {
		return fmt.Errorf("render facts table: %w", err)
	}
	if err := sse.PatchElements(html); err != nil {
		return err
	}

	fig, _, err := h.analytics.Parallel(q)
	if err != nil {
		return err
	}
	return h.patchSignals(sse, map[string]any{"parallel": fig})
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	figs, err := h.analytics.Figures()
	if err != nil {
		h.logger.Error("load figures", "error", err)
		sse.PatchElements(statusElement("charts-status", "Dataset not available"))
		return
	}

	fig, _, err := h.analytics.Parallel(services.DefaultParallelQuery)
	if err != nil {
		h.logger.Error("build parallel figure", "error", err)
		return
	}

	// Send all signals in one call
	if err := h.patchSignals(sse, map[string]any{
		"figures":  figs,
		"parallel": fig,
		"year":     fmt.Sprint(services.DefaultParallelQuery.Year),
		"region":   "",
		"product":  services.DefaultParallelQuery.Product,
	}); err != nil {
		h.logger.Error("patch all signals", "error", err)
		return
	}

	q := services.DefaultParallelQuery
	q.Limit = maxTableRows
	rows, total, err := h.analytics.Facts(q)
	if err != nil {
		h.logger.Error("filter facts", "error", err)
		return
	}
	html, err := renderFactsTable(q, rows, total)
	if err != nil {
		h.logger.Error("render facts table", "error", err)
		return
	}
	sse.PatchElements(html)
}
