package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecotech-dashboard/internal/models"
)

func TestRegionCO2View(t *testing.T) {
	tab := synthesizeDefault(t)

	got, err := RegionCO2View(tab)
	require.NoError(t, err)
	require.Len(t, got, 5)

	cat := DefaultCatalog()
	var total float64
	for i, g := range got {
		assert.Equal(t, cat.Regions[i], g.Region)
		assert.Equal(t, 200, g.Rows)
		total += g.CO2Reduction
	}

	var want float64
	for _, r := range tab.Rows {
		want += r.CO2Reduction
	}
	assert.InDelta(t, want, total, 1e-6)
}

func TestSunburstView(t *testing.T) {
	tab := synthesizeDefault(t)

	nodes, err := SunburstView(tab)
	require.NoError(t, err)
	// 5 years, 25 year/region pairs, 100 leaves.
	require.Len(t, nodes, 130)

	byID := make(map[string]models.SunburstNode, len(nodes))
	children := make(map[string]int)
	seen := make(map[string]bool)
	for _, n := range nodes {
		if n.Parent != "" {
			assert.True(t, seen[n.Parent], "parent %q must precede %q", n.Parent, n.ID)
		}
		seen[n.ID] = true
		byID[n.ID] = n
		children[n.Parent] += n.Sales
	}

	for id, n := range byID {
		if strings.Count(id, "/") == 2 {
			continue
		}
		assert.Equal(t, n.Sales, children[id], "children of %s", id)
	}

	var total int
	for _, r := range tab.Rows {
		total += r.Sales
	}
	assert.Equal(t, total, children[""])

	leaf := byID["2021/Asia/Eco Batteries"]
	assert.Equal(t, "Eco Batteries", leaf.Label)
	assert.Equal(t, "2021/Asia", leaf.Parent)
	assert.GreaterOrEqual(t, leaf.CustomerSatisfaction, 3.5)
}

func TestSunburstView_SalesWeightedSatisfaction(t *testing.T) {
	tab := NewFullTable([]models.FactRow{
		{Year: 2021, Region: "Asia", Product: "Solar Panels", Sales: 10, CustomerSatisfaction: 5},
		{Year: 2021, Region: "Asia", Product: "Solar Panels", Sales: 30, CustomerSatisfaction: 3},
		{Year: 2021, Region: "Europe", Product: "Wind Turbines", Sales: 0, CustomerSatisfaction: 4},
		{Year: 2021, Region: "Europe", Product: "Wind Turbines", Sales: 0, CustomerSatisfaction: 2},
	})

	nodes, err := SunburstView(tab)
	require.NoError(t, err)

	byID := make(map[string]models.SunburstNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	assert.InDelta(t, 3.5, byID["2021/Asia/Solar Panels"].CustomerSatisfaction, 1e-9)
	assert.InDelta(t, 3.5, byID["2021/Asia"].CustomerSatisfaction, 1e-9)
	// Zero sales falls back to the plain mean.
	assert.InDelta(t, 3.0, byID["2021/Europe"].CustomerSatisfaction, 1e-9)
	assert.InDelta(t, 3.5, byID["2021"].CustomerSatisfaction, 1e-9)
}

func TestProductProfileView(t *testing.T) {
	tab := synthesizeDefault(t)

	got, err := ProductProfileView(tab)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, DefaultCatalog().Products[0], got[0].Product)

	measures := []func(models.ProductProfile) float64{
		func(p models.ProductProfile) float64 { return p.Sales },
		func(p models.ProductProfile) float64 { return p.CustomerSatisfaction },
		func(p models.ProductProfile) float64 { return p.CO2Reduction },
		func(p models.ProductProfile) float64 { return p.ProductionCost },
	}
	for i, m := range measures {
		var lo, hi bool
		for _, p := range got {
			v := m(p)
			assert.GreaterOrEqual(t, v, 0.0, "measure %d", i)
			assert.LessOrEqual(t, v, 1.0, "measure %d", i)
			lo = lo || v == 0
			hi = hi || v == 1
		}
		assert.True(t, lo && hi, "measure %d should span [0, 1]", i)
	}
}

func TestProductProfileView_ConstantMeasure(t *testing.T) {
	tab := NewFullTable([]models.FactRow{
		{Product: "A", Sales: 10, CustomerSatisfaction: 4, CO2Reduction: 100, ProductionCost: 1000},
		{Product: "B", Sales: 20, CustomerSatisfaction: 4, CO2Reduction: 300, ProductionCost: 1000},
	})

	got, err := ProductProfileView(tab)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 0.0, got[0].Sales)
	assert.Equal(t, 1.0, got[1].Sales)
	assert.Equal(t, 1.0, got[0].CustomerSatisfaction)
	assert.Equal(t, 1.0, got[1].ProductionCost)
}

func TestSatisfactionDistribution(t *testing.T) {
	tab := synthesizeDefault(t)

	got, err := SatisfactionDistribution(tab)
	require.NoError(t, err)
	require.Len(t, got, 4)

	for _, d := range got {
		assert.Len(t, d.Samples, 250, d.Label)
		assert.IsNonDecreasing(t, d.Samples, d.Label)
		assert.LessOrEqual(t, d.Q1, d.Median)
		assert.LessOrEqual(t, d.Median, d.Q3)
		assert.GreaterOrEqual(t, d.Mean, 3.5)
		assert.LessOrEqual(t, d.Mean, 5.0)
		require.Len(t, d.Density, densityPoints, d.Label)
		for _, p := range d.Density {
			assert.GreaterOrEqual(t, p.Y, 0.0)
		}
	}
}

func TestSatisfactionDistribution_SingleSample(t *testing.T) {
	tab := NewFullTable([]models.FactRow{{Product: "A", CustomerSatisfaction: 4.2}})

	got, err := SatisfactionDistribution(tab)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4.2, got[0].Median)
	assert.Empty(t, got[0].Density)
}

func TestSatisfactionDistribution_Empty(t *testing.T) {
	_, err := SatisfactionDistribution(NewFullTable(nil))
	assert.ErrorIs(t, err, ErrEmptyTable)
}
