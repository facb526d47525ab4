// Package charts turns aggregate views into chart payloads: Plotly
// figures rendered in the browser and SVG images rendered on the server.
package charts

import (
	"errors"

	"ecotech-dashboard/internal/models"
)

// ErrNoData is returned by the SVG renderers when there is nothing to draw.
var ErrNoData = errors.New("charts: no data")

// Figure names, in dashboard order.
const (
	RegionCO2Bar        = "region-co2"
	SalesScatter        = "sales-satisfaction"
	CO2Map              = "co2-map"
	ImpactMap           = "impact-map"
	SalesFunnel         = "sales-funnel"
	DensityFlow         = "density-flow"
	SatisfactionViolin  = "satisfaction-violin"
	SalesSurface        = "sales-surface"
	Globe3D             = "globe-3d"
	ProductRadar        = "product-radar"
	ParallelCoordinates = "parallel-coordinates"
	Sunburst            = "sunburst"
)

var Names = []string{
	RegionCO2Bar, SalesScatter, CO2Map, ImpactMap, SalesFunnel, DensityFlow,
	SatisfactionViolin, SalesSurface, Globe3D, ProductRadar, ParallelCoordinates, Sunburst,
}

// Trace is one Plotly trace. Trace attributes differ per chart type, so
// they are kept as a plain attribute map.
type Trace map[string]any

type Axis struct {
	Title  string    `json:"title,omitempty"`
	Domain []float64 `json:"domain,omitempty"`
	Anchor string    `json:"anchor,omitempty"`
}

type Layout struct {
	Title   string           `json:"title,omitempty"`
	Height  int              `json:"height,omitempty"`
	XAxis   *Axis            `json:"xaxis,omitempty"`
	YAxis   *Axis            `json:"yaxis,omitempty"`
	XAxis2  *Axis            `json:"xaxis2,omitempty"`
	YAxis2  *Axis            `json:"yaxis2,omitempty"`
	Geo     map[string]any   `json:"geo,omitempty"`
	Scene   map[string]any   `json:"scene,omitempty"`
	Polar   map[string]any   `json:"polar,omitempty"`
	Sliders []map[string]any `json:"sliders,omitempty"`
}

type Frame struct {
	Name string  `json:"name"`
	Data []Trace `json:"data"`
}

// Figure is the JSON shape Plotly.newPlot accepts.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
	Frames []Frame `json:"frames,omitempty"`
}

// Views bundles the aggregates the figure builders read.
type Views struct {
	Facts        []models.FactRow
	RegionCO2    []models.RegionCO2
	GeoImpact    []models.GeoImpact
	Summary      []models.ProductionSummary
	Pivot        models.SalesPivot
	Focus        []models.FactRow
	FocusRegion  string
	Distribution []models.Distribution
	Profiles     []models.ProductProfile
	Parallel     []models.ColoredFactRow
	ParallelName string
	Sunburst     []models.SunburstNode
}

// BuildAll builds every figure in Names.
func BuildAll(v Views) map[string]Figure {
	return map[string]Figure{
		RegionCO2Bar:        NewRegionCO2Bar(v.RegionCO2),
		SalesScatter:        NewSalesScatter(v.Facts),
		CO2Map:              NewCO2Map(v.Facts),
		ImpactMap:           NewImpactMap(v.GeoImpact),
		SalesFunnel:         NewSalesFunnel(v.Summary),
		DensityFlow:         NewDensityFlow(v.Focus, v.FocusRegion),
		SatisfactionViolin:  NewSatisfactionViolin(v.Distribution, v.FocusRegion),
		SalesSurface:        NewSalesSurface(v.Pivot),
		Globe3D:             NewGlobe3D(v.Facts),
		ProductRadar:        NewProductRadar(v.Profiles),
		ParallelCoordinates: NewParallelCoordinates(v.Parallel, v.ParallelName),
		Sunburst:            NewSunburst(v.Sunburst),
	}
}

func pluck[T any](rows []models.FactRow, f func(models.FactRow) T) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = f(r)
	}
	return out
}
