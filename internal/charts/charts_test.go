package charts

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecotech-dashboard/internal/dataset"
	"ecotech-dashboard/internal/models"
)

func testViews(t *testing.T) Views {
	t.Helper()
	tab, err := dataset.Synthesize(dataset.NewGenerator(dataset.DefaultSeed), dataset.DefaultCatalog())
	require.NoError(t, err)

	v := Views{Facts: tab.Rows, FocusRegion: "North America", ParallelName: "Eco Batteries in 2021"}
	v.RegionCO2, err = dataset.RegionCO2View(tab)
	require.NoError(t, err)
	v.GeoImpact, err = dataset.GeoImpactView(tab)
	require.NoError(t, err)
	v.Summary, err = dataset.ProductionSummaryView(tab)
	require.NoError(t, err)
	v.Pivot, err = dataset.SalesPivotView(tab)
	require.NoError(t, err)
	v.Profiles, err = dataset.ProductProfileView(tab)
	require.NoError(t, err)
	v.Sunburst, err = dataset.SunburstView(tab)
	require.NoError(t, err)

	focus, err := dataset.FilterByRegion(tab, v.FocusRegion)
	require.NoError(t, err)
	v.Focus = focus.Rows
	v.Distribution, err = dataset.SatisfactionDistribution(focus)
	require.NoError(t, err)

	sub, err := dataset.Filter(tab, dataset.YearIs(2021), dataset.ProductIs("Eco Batteries"))
	require.NoError(t, err)
	v.Parallel = dataset.WithRegionColors(sub.Rows)
	return v
}

func TestBuildAll(t *testing.T) {
	figs := BuildAll(testViews(t))

	require.Len(t, figs, len(Names))
	for _, name := range Names {
		fig, ok := figs[name]
		require.True(t, ok, name)
		assert.NotEmpty(t, fig.Data, name)
		assert.NotEmpty(t, fig.Layout.Title, name)

		b, err := json.Marshal(fig)
		require.NoError(t, err, name)
		assert.Contains(t, string(b), `"data":[`, name)
	}
}

func TestNewSalesFunnel(t *testing.T) {
	v := testViews(t)
	fig := NewSalesFunnel(v.Summary)

	require.Len(t, fig.Data, 5)
	for _, tr := range fig.Data {
		assert.Equal(t, "funnel", tr["type"])
		assert.Len(t, tr["x"], 4)
	}
	assert.Equal(t, "Africa", fig.Data[0]["name"])
}

func TestNewGlobe3D_Frames(t *testing.T) {
	fig := NewGlobe3D(testViews(t).Facts)

	require.Len(t, fig.Frames, 5)
	assert.Equal(t, "2020", fig.Frames[0].Name)
	assert.Equal(t, fig.Frames[0].Data, fig.Data)
	assert.Len(t, fig.Frames[0].Data[0]["x"], 200)
	require.Len(t, fig.Layout.Sliders, 1)
}

func TestNewGlobe3D_Empty(t *testing.T) {
	fig := NewGlobe3D(nil)
	assert.Empty(t, fig.Data)
	assert.Empty(t, fig.Layout.Sliders)
}

func TestNewProductRadar_ClosesPolygons(t *testing.T) {
	profiles := []models.ProductProfile{{Product: "Solar Panels", Sales: 0.8, CustomerSatisfaction: 0.9, CO2Reduction: 0.7, ProductionCost: 0.6}}
	fig := NewProductRadar(profiles)

	require.Len(t, fig.Data, 1)
	r := fig.Data[0]["r"].([]float64)
	theta := fig.Data[0]["theta"].([]string)
	assert.Equal(t, []float64{0.8, 0.9, 0.7, 0.6, 0.8}, r)
	assert.Len(t, theta, 5)
	assert.Equal(t, theta[0], theta[4])
	assert.Len(t, radarAxes, 4)
}

func TestNewParallelCoordinates(t *testing.T) {
	v := testViews(t)
	fig := NewParallelCoordinates(v.Parallel, v.ParallelName)

	require.Len(t, fig.Data, 1)
	line := fig.Data[0]["line"].(map[string]any)
	colors := line["color"].([]int)
	require.Len(t, colors, 50)
	assert.Equal(t, 0, colors[0])
	assert.Equal(t, 4, colors[len(colors)-1])
	assert.Equal(t, "Eco Batteries in 2021", fig.Layout.Title)
}

func TestNewSunburst(t *testing.T) {
	v := testViews(t)
	fig := NewSunburst(v.Sunburst)

	tr := fig.Data[0]
	assert.Equal(t, "total", tr["branchvalues"])
	assert.Len(t, tr["ids"], len(v.Sunburst))
	assert.Len(t, tr["parents"], len(v.Sunburst))
}

func TestAreaSizeRef(t *testing.T) {
	assert.Equal(t, 1.0, areaSizeRef(nil))
	assert.Equal(t, 1.0, areaSizeRef([]float64{0, 0}))
	assert.InDelta(t, 2.0*400/(20*20), areaSizeRef([]float64{100, 400}), 1e-12)
}

func TestSVGCharts(t *testing.T) {
	v := testViews(t)

	for name, render := range SVGCharts {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, render(&buf, v))
			assert.Contains(t, buf.String(), "<svg")
		})
	}
}

func TestSVG_NoData(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, SVGBar(&buf, nil), ErrNoData)
	assert.ErrorIs(t, SVGScatter(&buf, nil), ErrNoData)
	assert.ErrorIs(t, SVGDensity(&buf, []models.Distribution{{Label: "A"}}), ErrNoData)
	assert.ErrorIs(t, SVGPivotLines(&buf, models.SalesPivot{}), ErrNoData)
	assert.ErrorIs(t, SVGBoxPlot(&buf, nil), ErrNoData)
	assert.ErrorIs(t, SVGBoxPlot(&buf, []models.Distribution{{Label: "A"}}), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestSVGDensity_SkipsFlatDistributions(t *testing.T) {
	v := testViews(t)
	require.NotEmpty(t, v.Distribution)

	dists := append([]models.Distribution{{Label: "Flat", Samples: []float64{4, 4, 4}, Mean: 4, Q1: 4, Median: 4, Q3: 4}}, v.Distribution...)

	var buf bytes.Buffer
	require.NoError(t, SVGDensity(&buf, dists))
	assert.Contains(t, buf.String(), "<svg")
	assert.NotContains(t, buf.String(), "Flat")
}
