package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synthesizeDefault(t *testing.T) *Table {
	t.Helper()
	tab, err := Synthesize(NewGenerator(DefaultSeed), DefaultCatalog())
	require.NoError(t, err)
	return tab
}

func TestSynthesize_Shape(t *testing.T) {
	tab := synthesizeDefault(t)

	assert.Equal(t, 1000, tab.Len())
	assert.Equal(t, AllColumns, tab.Columns())

	type key struct {
		year            int
		region, product string
	}
	counts := make(map[key]int)
	for _, r := range tab.Rows {
		counts[key{r.Year, r.Region, r.Product}]++
	}
	assert.Len(t, counts, 100)
	for k, n := range counts {
		assert.Equal(t, 10, n, "rows for %v", k)
	}
}

func TestSynthesize_RowOrder(t *testing.T) {
	tab := synthesizeDefault(t)
	cat := DefaultCatalog()

	i := 0
	for _, year := range cat.Years {
		for _, region := range cat.Regions {
			for _, product := range cat.Products {
				for range cat.Replicates {
					r := tab.Rows[i]
					require.Equal(t, year, r.Year, "row %d", i)
					require.Equal(t, region, r.Region, "row %d", i)
					require.Equal(t, product, r.Product, "row %d", i)
					i++
				}
			}
		}
	}
}

func TestSynthesize_CoordinatesFollowRegion(t *testing.T) {
	tab := synthesizeDefault(t)
	cat := DefaultCatalog()

	for _, r := range tab.Rows {
		want, ok := cat.CoordinateOf(r.Region)
		require.True(t, ok, "unknown region %q", r.Region)
		assert.Equal(t, want.Latitude, r.Latitude)
		assert.Equal(t, want.Longitude, r.Longitude)
		if r.Region == "North America" {
			assert.Equal(t, 40.7, r.Latitude)
			assert.Equal(t, -74.0, r.Longitude)
		}
	}
}

func TestSynthesize_ValueRanges(t *testing.T) {
	tab := synthesizeDefault(t)

	for i, r := range tab.Rows {
		assert.GreaterOrEqual(t, r.Sales, 50, "row %d", i)
		assert.Less(t, r.Sales, 500, "row %d", i)
		assert.GreaterOrEqual(t, r.CustomerSatisfaction, 3.5, "row %d", i)
		assert.LessOrEqual(t, r.CustomerSatisfaction, 5.0, "row %d", i)
		assert.GreaterOrEqual(t, r.CO2Reduction, 100.0, "row %d", i)
		assert.Less(t, r.CO2Reduction, 1000.0, "row %d", i)
		assert.GreaterOrEqual(t, r.ProductionCost, 1000.0, "row %d", i)
		assert.Less(t, r.ProductionCost, 10000.0, "row %d", i)
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	a := synthesizeDefault(t)
	b := synthesizeDefault(t)
	assert.Equal(t, a.Rows, b.Rows)

	other, err := Synthesize(NewGenerator(DefaultSeed+1), DefaultCatalog())
	require.NoError(t, err)
	assert.NotEqual(t, a.Rows, other.Rows)
}

func TestSynthesize_IndependentGenerators(t *testing.T) {
	// Two generators with the same seed must not share state.
	g1, g2 := NewGenerator(7), NewGenerator(7)
	a, err := Synthesize(g1, DefaultCatalog())
	require.NoError(t, err)
	_ = g1.Uint64()
	b, err := Synthesize(g2, DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, a.Rows, b.Rows)
}

func TestSynthesize_InvalidCatalog(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Catalog)
		wantErr error
	}{
		{
			name:    "coordinate table shorter than regions",
			mutate:  func(c *Catalog) { c.Coordinates = c.Coordinates[:4] },
			wantErr: ErrCoordinateMismatch,
		},
		{
			name:    "extra region without coordinates",
			mutate:  func(c *Catalog) { c.Regions = append(c.Regions, "Oceania") },
			wantErr: ErrCoordinateMismatch,
		},
		{
			name:    "no products",
			mutate:  func(c *Catalog) { c.Products = nil },
			wantErr: ErrInvalidCatalog,
		},
		{
			name:    "zero replicates",
			mutate:  func(c *Catalog) { c.Replicates = 0 },
			wantErr: ErrInvalidCatalog,
		},
		{
			name:    "empty sales range",
			mutate:  func(c *Catalog) { c.Sales = IntRange{Min: 10, Max: 10} },
			wantErr: ErrInvalidCatalog,
		},
		{
			name:    "inverted cost range",
			mutate:  func(c *Catalog) { c.Cost = FloatRange{Min: 5, Max: 1} },
			wantErr: ErrInvalidCatalog,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := DefaultCatalog()
			tt.mutate(&cat)

			tab, err := Synthesize(NewGenerator(DefaultSeed), cat)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, tab)
		})
	}
}

func TestCatalog_Size(t *testing.T) {
	assert.Equal(t, 1000, DefaultCatalog().Size())
}
