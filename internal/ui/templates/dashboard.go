// Package templates renders the dashboard page. Markup lives in
// dashboard.templ; run `templ generate` after editing it.
package templates

import (
	"encoding/json"
	"fmt"
	"strconv"

	"ecotech-dashboard/internal/charts"
	"ecotech-dashboard/internal/dataset"
	"ecotech-dashboard/internal/services"
)

const (
	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
	plotlyScript   = "https://cdn.plot.ly/plotly-2.35.2.min.js"
)

// Titles heads each chart card.
var Titles = map[string]string{
	charts.RegionCO2Bar:        "CO2 Reduction by Region",
	charts.SalesScatter:        "Sales and Customer Satisfaction",
	charts.CO2Map:              "CO2 Reduction Map",
	charts.ImpactMap:           "Environmental Impact by Location",
	charts.SalesFunnel:         "Sales Funnel by Region",
	charts.DensityFlow:         "Production Cost and CO2 Reduction",
	charts.SatisfactionViolin:  "Customer Satisfaction Distribution",
	charts.SalesSurface:        "Sales Surface by Region and Year",
	charts.Globe3D:             "Global Sales Over Time",
	charts.ProductRadar:        "Product Performance Radar",
	charts.ParallelCoordinates: "Parallel Coordinates",
	charts.Sunburst:            "Sales Hierarchy",
}

var svgTitles = []struct{ Name, Title string }{
	{"region-co2", "CO2 reduction by region"},
	{"sales-satisfaction", "Sales and satisfaction"},
	{"satisfaction-density", "Satisfaction density"},
	{"sales-by-year", "Sales by year"},
	{"satisfaction-box", "Satisfaction box plot"},
}

const renderScript = `
window.renderFigure = function (el, fig) {
  if (!fig || !window.Plotly) { return; }
  Plotly.react(el, fig.data, fig.layout, {responsive: true}).then(function () {
    if (fig.frames && fig.frames.length) { Plotly.addFrames(el, fig.frames); }
  });
};`

const styles = `
body { font-family: system-ui, sans-serif; margin: 0; background: #f4f7f4; color: #1d2b1f; }
header { background: #1f6f43; color: #fff; padding: 1.5rem 2rem; }
header p { margin: 0.25rem 0 0; opacity: 0.85; }
main { padding: 1.5rem 2rem; }
.filters { display: flex; gap: 1rem; align-items: end; margin-bottom: 1.5rem; flex-wrap: wrap; }
.filters label { display: flex; flex-direction: column; font-size: 0.85rem; gap: 0.25rem; }
.grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(520px, 1fr)); gap: 1.25rem; }
.card { background: #fff; border-radius: 8px; padding: 1rem; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.chart { min-height: 420px; }
.modern-table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
.modern-table th, .modern-table td { padding: 0.4rem 0.6rem; border-bottom: 1px solid #e3e9e3; text-align: left; }
.category-badge { background: #e4f3e8; border-radius: 4px; padding: 0.1rem 0.4rem; }
.svg-strip { display: flex; gap: 1rem; flex-wrap: wrap; }
.svg-strip img { width: 320px; border: 1px solid #e3e9e3; border-radius: 4px; background: #fff; }
`

const inlineAssets = "<script>" + renderScript + "</script><style>" + styles + "</style>"

type filterField struct {
	Signal  string
	Label   string
	Options []string
}

func filterFields(cat dataset.Catalog) []filterField {
	years := make([]string, len(cat.Years))
	for i, y := range cat.Years {
		years[i] = strconv.Itoa(y)
	}
	return []filterField{
		{"year", "Year", years},
		{"region", "Region", cat.Regions},
		{"product", "Product", cat.Products},
	}
}

// initialSignals seeds the filters with the default parallel
// coordinates subset. Year is a string to match the select input.
func initialSignals() (string, error) {
	q := services.DefaultParallelQuery
	b, err := json.Marshal(map[string]any{
		"figures":  nil,
		"parallel": nil,
		"year":     strconv.Itoa(q.Year),
		"region":   "",
		"product":  q.Product,
	})
	return string(b), err
}

// renderCall is the data-effect expression of a chart card. The
// parallel coordinates card prefers the filtered figure once one has
// been patched in.
func renderCall(name string) string {
	fig := fmt.Sprintf("$figures && $figures['%s']", name)
	if name == charts.ParallelCoordinates {
		fig = "$parallel || (" + fig + ")"
	}
	return "window.renderFigure && window.renderFigure(el, " + fig + ")"
}
