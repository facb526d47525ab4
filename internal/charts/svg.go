package charts

import (
	"fmt"
	"io"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"ecotech-dashboard/internal/models"
)

const (
	svgWidth  = 640
	svgHeight = 400
)

// SVGRenderer draws one server-side chart from the precomputed views.
type SVGRenderer func(w io.Writer, v Views) error

// SVGCharts maps the names served under /charts/ to their renderers.
var SVGCharts = map[string]SVGRenderer{
	"region-co2":           func(w io.Writer, v Views) error { return SVGBar(w, v.RegionCO2) },
	"sales-satisfaction":   func(w io.Writer, v Views) error { return SVGScatter(w, v.Facts) },
	"satisfaction-density": func(w io.Writer, v Views) error { return SVGDensity(w, v.Distribution) },
	"sales-by-year":        func(w io.Writer, v Views) error { return SVGPivotLines(w, v.Pivot) },
	"satisfaction-box":     func(w io.Writer, v Views) error { return SVGBoxPlot(w, v.Distribution) },
}

// SVGBar draws CO2 reduction per region.
func SVGBar(w io.Writer, rows []models.RegionCO2) error {
	if len(rows) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, len(rows))
	for i, r := range rows {
		bars[i] = chart.Value{Label: r.Region, Value: r.CO2Reduction}
	}
	c := chart.BarChart{
		Title:    "CO2 Reduction by Region",
		Width:    svgWidth,
		Height:   svgHeight,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}
	if err := c.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// SVGScatter plots satisfaction against sales for every fact row.
func SVGScatter(w io.Writer, rows []models.FactRow) error {
	if len(rows) == 0 {
		return ErrNoData
	}
	tab := new(table.Builder).
		Add("sales", pluck(rows, func(r models.FactRow) float64 { return float64(r.Sales) })).
		Add("customer satisfaction", pluck(rows, func(r models.FactRow) float64 { return r.CustomerSatisfaction })).
		Done()

	p := gg.NewPlot(tab)
	p.Add(gg.Title("Sales and Customer Satisfaction"))
	p.Add(gg.LayerPoints{X: "sales", Y: "customer satisfaction"})
	return p.WriteSVG(w, svgWidth, svgHeight)
}

// SVGDensity draws the precomputed KDE curve of each distribution.
// Distributions without a curve are skipped.
func SVGDensity(w io.Writer, dists []models.Distribution) error {
	var xs, ys []float64
	var labels []string
	for _, d := range dists {
		for _, pt := range d.Density {
			xs = append(xs, pt.X)
			ys = append(ys, pt.Y)
			labels = append(labels, d.Label)
		}
	}
	if len(xs) == 0 {
		return ErrNoData
	}
	tab := new(table.Builder).
		Add("customer satisfaction", xs).
		Add("density", ys).
		Add("product", labels).
		Done()

	p := gg.NewPlot(tab)
	p.Add(gg.Title("Customer Satisfaction Density"))
	p.Add(gg.LayerLines{X: "customer satisfaction", Y: "density", Color: "product"})
	return p.WriteSVG(w, svgWidth, svgHeight)
}

// SVGPivotLines draws one sales-per-year line for each region of view C.
func SVGPivotLines(w io.Writer, pivot models.SalesPivot) error {
	var years, sales []float64
	var regions []string
	for i, region := range pivot.Regions {
		for j, year := range pivot.Years {
			years = append(years, float64(year))
			sales = append(sales, float64(pivot.Cells[i][j]))
			regions = append(regions, region)
		}
	}
	if len(years) == 0 {
		return ErrNoData
	}
	tab := new(table.Builder).
		Add("year", years).
		Add("sales", sales).
		Add("region", regions).
		Done()

	p := gg.NewPlot(tab)
	p.Add(gg.Title("Sales by Region and Year"))
	p.Add(gg.LayerLines{X: "year", Y: "sales", Color: "region"})
	p.Add(gg.LayerPoints{X: "year", Y: "sales", Color: "region"})
	return p.WriteSVG(w, svgWidth, svgHeight)
}

// SVGBoxPlot draws one box per distribution.
func SVGBoxPlot(w io.Writer, dists []models.Distribution) error {
	if len(dists) == 0 {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = "Customer Satisfaction by Product"
	p.Y.Label.Text = "Customer Satisfaction"

	labels := make([]string, len(dists))
	for i, d := range dists {
		if len(d.Samples) == 0 {
			return fmt.Errorf("box plot %s: %w", d.Label, ErrNoData)
		}
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(d.Samples))
		if err != nil {
			return fmt.Errorf("box plot %s: %w", d.Label, err)
		}
		p.Add(box)
		labels[i] = d.Label
	}
	p.NominalX(labels...)

	wt, err := p.WriterTo(vg.Points(svgWidth), vg.Points(svgHeight), "svg")
	if err != nil {
		return fmt.Errorf("box plot writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write box plot: %w", err)
	}
	return nil
}
