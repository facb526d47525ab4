package charts

import (
	"fmt"
	"slices"
	"strconv"

	"ecotech-dashboard/internal/models"
)

// maxMarkerSize is the pixel diameter of the largest bubble on the maps.
const maxMarkerSize = 20

// areaSizeRef scales bubble areas so the largest value gets maxMarkerSize.
func areaSizeRef(values []float64) float64 {
	if len(values) == 0 {
		return 1
	}
	hi := slices.Max(values)
	if hi <= 0 {
		return 1
	}
	return 2 * hi / (maxMarkerSize * maxMarkerSize)
}

var naturalEarth = map[string]any{
	"projection":     map[string]any{"type": "natural earth"},
	"showcoastlines": true,
	"showland":       true,
}

func NewRegionCO2Bar(rows []models.RegionCO2) Figure {
	x := make([]string, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		x[i], y[i] = r.Region, r.CO2Reduction
	}
	return Figure{
		Data: []Trace{{"type": "bar", "x": x, "y": y, "name": "CO2 Reduction"}},
		Layout: Layout{
			Title: "CO2 Reduction by Region",
			XAxis: &Axis{Title: "Region"},
			YAxis: &Axis{Title: "CO2 Reduction (tons)"},
		},
	}
}

func NewSalesScatter(rows []models.FactRow) Figure {
	return Figure{
		Data: []Trace{{
			"type": "scatter",
			"mode": "markers",
			"x":    pluck(rows, func(r models.FactRow) int { return r.Sales }),
			"y":    pluck(rows, func(r models.FactRow) float64 { return r.CustomerSatisfaction }),
		}},
		Layout: Layout{
			Title: "Sales and Customer Satisfaction",
			XAxis: &Axis{Title: "Sales"},
			YAxis: &Axis{Title: "Customer Satisfaction"},
		},
	}
}

// NewCO2Map places one bubble per fact row at its region's reference
// point, sized by CO2 reduction.
func NewCO2Map(rows []models.FactRow) Figure {
	co2 := pluck(rows, func(r models.FactRow) float64 { return r.CO2Reduction })
	return Figure{
		Data: []Trace{{
			"type":      "scattergeo",
			"lat":       pluck(rows, func(r models.FactRow) float64 { return r.Latitude }),
			"lon":       pluck(rows, func(r models.FactRow) float64 { return r.Longitude }),
			"hovertext": pluck(rows, func(r models.FactRow) string { return r.Region }),
			"marker": map[string]any{
				"size":     co2,
				"sizemode": "area",
				"sizeref":  areaSizeRef(co2),
			},
		}},
		Layout: Layout{Title: "Sales and CO2 Reduction by Region and Product", Geo: naturalEarth},
	}
}

// NewImpactMap plots view A: bubble area is summed sales, color is mean
// satisfaction.
func NewImpactMap(groups []models.GeoImpact) Figure {
	n := len(groups)
	lat, lon := make([]float64, n), make([]float64, n)
	sales, satisfaction := make([]float64, n), make([]float64, n)
	text := make([]string, n)
	for i, g := range groups {
		lat[i], lon[i] = g.Latitude, g.Longitude
		sales[i], satisfaction[i] = float64(g.Sales), g.CustomerSatisfaction
		text[i] = fmt.Sprintf("%s<br>%s<br>Sales: %d<br>CO2 Reduction: %.1f tons<br>Production Cost: $%.0f",
			g.Region, g.Product, g.Sales, g.CO2Reduction, g.ProductionCost)
	}
	return Figure{
		Data: []Trace{{
			"type":      "scattergeo",
			"lat":       lat,
			"lon":       lon,
			"hovertext": text,
			"hoverinfo": "text",
			"marker": map[string]any{
				"size":      sales,
				"sizemode":  "area",
				"sizeref":   areaSizeRef(sales),
				"color":     satisfaction,
				"showscale": true,
				"colorbar":  map[string]any{"title": "Customer Satisfaction"},
			},
		}},
		Layout: Layout{Title: "Green Impact Bubble Map", Geo: naturalEarth},
	}
}

// NewSalesFunnel draws view B as one funnel trace per region.
func NewSalesFunnel(summary []models.ProductionSummary) Figure {
	var regions []string
	byRegion := make(map[string][]models.ProductionSummary)
	for _, s := range summary {
		if _, ok := byRegion[s.Region]; !ok {
			regions = append(regions, s.Region)
		}
		byRegion[s.Region] = append(byRegion[s.Region], s)
	}

	data := make([]Trace, 0, len(regions))
	for _, region := range regions {
		rows := byRegion[region]
		x := make([]int, len(rows))
		y := make([]string, len(rows))
		for i, s := range rows {
			x[i], y[i] = s.Sales, s.Product
		}
		data = append(data, Trace{"type": "funnel", "name": region, "x": x, "y": y})
	}
	return Figure{
		Data:   data,
		Layout: Layout{Title: "Sales Funnel", XAxis: &Axis{Title: "Sales"}, YAxis: &Axis{Title: "Product"}},
	}
}

// NewDensityFlow is a 2D density contour of cost against CO2 reduction
// with marginal histograms on both axes.
func NewDensityFlow(rows []models.FactRow, region string) Figure {
	cost := pluck(rows, func(r models.FactRow) float64 { return r.ProductionCost })
	co2 := pluck(rows, func(r models.FactRow) float64 { return r.CO2Reduction })
	return Figure{
		Data: []Trace{
			{"type": "histogram2dcontour", "x": cost, "y": co2, "name": region},
			{"type": "histogram", "x": cost, "yaxis": "y2", "showlegend": false},
			{"type": "histogram", "y": co2, "xaxis": "x2", "showlegend": false},
		},
		Layout: Layout{
			Title:  "EcoTech Density Flow - " + region,
			Height: 600,
			XAxis:  &Axis{Title: "Production Cost ($)", Domain: []float64{0, 0.8}},
			YAxis:  &Axis{Title: "CO₂ Reduction (tons)", Domain: []float64{0, 0.8}},
			XAxis2: &Axis{Domain: []float64{0.82, 1}, Anchor: "y"},
			YAxis2: &Axis{Domain: []float64{0.82, 1}, Anchor: "x"},
		},
	}
}

// NewSatisfactionViolin draws one horizontal violin per product with the
// box and every sample point overlaid.
func NewSatisfactionViolin(dists []models.Distribution, region string) Figure {
	data := make([]Trace, 0, len(dists))
	for _, d := range dists {
		y := make([]string, len(d.Samples))
		for i := range y {
			y[i] = d.Label
		}
		data = append(data, Trace{
			"type":        "violin",
			"orientation": "h",
			"name":        d.Label,
			"x":           d.Samples,
			"y":           y,
			"box":         map[string]any{"visible": true},
			"meanline":    map[string]any{"visible": true},
			"points":      "all",
		})
	}
	return Figure{
		Data: data,
		Layout: Layout{
			Title:  "Customer Satisfaction by Product - " + region,
			Height: 600,
			XAxis:  &Axis{Title: "Customer Satisfaction"},
			YAxis:  &Axis{Title: "Product"},
		},
	}
}

// NewSalesSurface renders view C as a 3D surface.
func NewSalesSurface(p models.SalesPivot) Figure {
	return Figure{
		Data: []Trace{{"type": "surface", "z": p.Cells, "x": p.Years, "y": p.Regions}},
		Layout: Layout{
			Title: "Sales by Region and Year",
			Scene: map[string]any{
				"xaxis": map[string]any{"title": "Year"},
				"yaxis": map[string]any{"title": "Region"},
				"zaxis": map[string]any{"title": "Sales"},
			},
		},
	}
}

// NewGlobe3D is a 3D scatter of sales over coordinates with one
// animation frame per year. The first year is drawn initially.
func NewGlobe3D(rows []models.FactRow) Figure {
	var years []int
	byYear := make(map[int][]models.FactRow)
	for _, r := range rows {
		if _, ok := byYear[r.Year]; !ok {
			years = append(years, r.Year)
		}
		byYear[r.Year] = append(byYear[r.Year], r)
	}

	frames := make([]Frame, 0, len(years))
	steps := make([]map[string]any, 0, len(years))
	for _, y := range years {
		name := strconv.Itoa(y)
		frames = append(frames, Frame{Name: name, Data: []Trace{globeTrace(byYear[y])}})
		steps = append(steps, map[string]any{
			"label":  name,
			"method": "animate",
			"args": []any{
				[]string{name},
				map[string]any{"mode": "immediate", "frame": map[string]any{"duration": 300, "redraw": true}},
			},
		})
	}

	f := Figure{
		Layout: Layout{
			Title: "EcoTech Interactive Globe",
			Scene: map[string]any{
				"aspectmode": "cube",
				"xaxis":      map[string]any{"title": "Longitude"},
				"yaxis":      map[string]any{"title": "Latitude"},
				"zaxis":      map[string]any{"title": "Sales"},
			},
		},
		Frames: frames,
	}
	if len(frames) > 0 {
		f.Data = frames[0].Data
		f.Layout.Sliders = []map[string]any{{"currentvalue": map[string]any{"prefix": "Year: "}, "steps": steps}}
	}
	return f
}

func globeTrace(rows []models.FactRow) Trace {
	return Trace{
		"type":      "scatter3d",
		"mode":      "markers",
		"x":         pluck(rows, func(r models.FactRow) float64 { return r.Longitude }),
		"y":         pluck(rows, func(r models.FactRow) float64 { return r.Latitude }),
		"z":         pluck(rows, func(r models.FactRow) int { return r.Sales }),
		"hovertext": pluck(rows, func(r models.FactRow) string { return r.Product }),
		"marker": map[string]any{
			"size":      5,
			"opacity":   0.8,
			"color":     pluck(rows, func(r models.FactRow) float64 { return r.CO2Reduction }),
			"showscale": true,
		},
	}
}

var radarAxes = []string{"Sales", "Customer Satisfaction", "CO2 Reduction", "Production Cost"}

// NewProductRadar draws the normalized product profiles. Each polygon
// repeats its first vertex to close the outline.
func NewProductRadar(profiles []models.ProductProfile) Figure {
	theta := append(slices.Clone(radarAxes), radarAxes[0])
	data := make([]Trace, 0, len(profiles))
	for _, p := range profiles {
		r := []float64{p.Sales, p.CustomerSatisfaction, p.CO2Reduction, p.ProductionCost, p.Sales}
		data = append(data, Trace{"type": "scatterpolar", "name": p.Product, "r": r, "theta": theta, "fill": "toself"})
	}
	return Figure{
		Data: data,
		Layout: Layout{
			Title: "Product Profiles",
			Polar: map[string]any{"radialaxis": map[string]any{"visible": true, "range": []float64{0, 1}}},
		},
	}
}

// NewParallelCoordinates colors lines by region index.
func NewParallelCoordinates(rows []models.ColoredFactRow, title string) Figure {
	facts := make([]models.FactRow, len(rows))
	colors := make([]int, len(rows))
	for i, r := range rows {
		facts[i], colors[i] = r.FactRow, r.RegionColor
	}
	dimension := func(label string, values any) map[string]any {
		return map[string]any{"label": label, "values": values}
	}
	return Figure{
		Data: []Trace{{
			"type": "parcoords",
			"line": map[string]any{"color": colors, "showscale": true},
			"dimensions": []map[string]any{
				dimension("Production Cost", pluck(facts, func(r models.FactRow) float64 { return r.ProductionCost })),
				dimension("Sales", pluck(facts, func(r models.FactRow) int { return r.Sales })),
				dimension("Customer Satisfaction", pluck(facts, func(r models.FactRow) float64 { return r.CustomerSatisfaction })),
				dimension("CO2 Reduction", pluck(facts, func(r models.FactRow) float64 { return r.CO2Reduction })),
			},
		}},
		Layout: Layout{Title: title, Height: 600},
	}
}

// NewSunburst draws the year/region/product hierarchy. Values are
// totals, so each ring exactly fills its parent.
func NewSunburst(nodes []models.SunburstNode) Figure {
	n := len(nodes)
	ids, labels, parents := make([]string, n), make([]string, n), make([]string, n)
	values, colors := make([]int, n), make([]float64, n)
	for i, node := range nodes {
		ids[i], labels[i], parents[i] = node.ID, node.Label, node.Parent
		values[i], colors[i] = node.Sales, node.CustomerSatisfaction
	}
	return Figure{
		Data: []Trace{{
			"type":         "sunburst",
			"ids":          ids,
			"labels":       labels,
			"parents":      parents,
			"values":       values,
			"branchvalues": "total",
			"marker":       map[string]any{"colors": colors, "showscale": true},
		}},
		Layout: Layout{Title: "EcoTech Sunburst Chart", Height: 800},
	}
}
