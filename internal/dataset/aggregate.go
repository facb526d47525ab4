package dataset

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/aclements/go-moremath/stats"

	"ecotech-dashboard/internal/models"
)

// totalProductionFactor converts summed sales into total production.
const totalProductionFactor = 1.2

type geoKey struct {
	region, product string
	lat, lon        float64
}

type measures struct {
	sales        int
	satisfaction []float64
	co2          []float64
	cost         []float64
}

func (m *measures) add(r models.FactRow) {
	m.sales += r.Sales
	m.satisfaction = append(m.satisfaction, r.CustomerSatisfaction)
	m.co2 = append(m.co2, r.CO2Reduction)
	m.cost = append(m.cost, r.ProductionCost)
}

// GeoImpactView groups by (region, product, latitude, longitude) and
// reduces sales by sum and the other measures by mean. Groups come back
// sorted by their key.
func GeoImpactView(t *Table) ([]models.GeoImpact, error) {
	if err := t.requireRows(ColRegion, ColProduct, ColLatitude, ColLongitude,
		ColSales, ColCustomerSatisfaction, ColCO2Reduction, ColProductionCost); err != nil {
		return nil, fmt.Errorf("geo impact view: %w", err)
	}

	groups := make(map[geoKey]*measures)
	for _, r := range t.Rows {
		k := geoKey{r.Region, r.Product, r.Latitude, r.Longitude}
		m := groups[k]
		if m == nil {
			m = &measures{}
			groups[k] = m
		}
		m.add(r)
	}

	out := make([]models.GeoImpact, 0, len(groups))
	for k, m := range groups {
		out = append(out, models.GeoImpact{
			Region:               k.region,
			Product:              k.product,
			Latitude:             k.lat,
			Longitude:            k.lon,
			Sales:                m.sales,
			CustomerSatisfaction: stats.Mean(m.satisfaction),
			CO2Reduction:         stats.Mean(m.co2),
			ProductionCost:       stats.Mean(m.cost),
			Rows:                 len(m.satisfaction),
		})
	}
	slices.SortFunc(out, func(a, b models.GeoImpact) int {
		return cmp.Or(
			cmp.Compare(a.Region, b.Region),
			cmp.Compare(a.Product, b.Product),
			cmp.Compare(a.Latitude, b.Latitude),
			cmp.Compare(a.Longitude, b.Longitude),
		)
	})
	return out, nil
}

type regionProduct struct {
	region, product string
}

// ProductionSummaryView groups by (region, product): sales, CO2 and cost
// are summed, satisfaction averaged. TotalProduction is derived from the
// summed sales once the groups are complete.
func ProductionSummaryView(t *Table) ([]models.ProductionSummary, error) {
	if err := t.requireRows(ColRegion, ColProduct, ColSales,
		ColCustomerSatisfaction, ColCO2Reduction, ColProductionCost); err != nil {
		return nil, fmt.Errorf("production summary view: %w", err)
	}

	groups := make(map[regionProduct]*measures)
	for _, r := range t.Rows {
		k := regionProduct{r.Region, r.Product}
		m := groups[k]
		if m == nil {
			m = &measures{}
			groups[k] = m
		}
		m.add(r)
	}

	out := make([]models.ProductionSummary, 0, len(groups))
	for k, m := range groups {
		out = append(out, models.ProductionSummary{
			Region:               k.region,
			Product:              k.product,
			Sales:                m.sales,
			CustomerSatisfaction: stats.Mean(m.satisfaction),
			CO2Reduction:         sum(m.co2),
			ProductionCost:       sum(m.cost),
		})
	}
	for i := range out {
		out[i].TotalProduction = float64(out[i].Sales) * totalProductionFactor
	}
	slices.SortFunc(out, func(a, b models.ProductionSummary) int {
		return cmp.Or(cmp.Compare(a.Region, b.Region), cmp.Compare(a.Product, b.Product))
	})
	return out, nil
}

// SalesPivotView cross-tabulates summed sales by region and year, both
// axes ascending. Every (region, year) pair must have source rows.
func SalesPivotView(t *Table) (models.SalesPivot, error) {
	if err := t.requireRows(ColRegion, ColYear, ColSales); err != nil {
		return models.SalesPivot{}, fmt.Errorf("sales pivot: %w", err)
	}

	type cell struct {
		region string
		year   int
	}
	sums := make(map[cell]int)
	var regions []string
	var years []int
	for _, r := range t.Rows {
		k := cell{r.Region, r.Year}
		if _, ok := sums[k]; !ok {
			if !slices.Contains(regions, r.Region) {
				regions = append(regions, r.Region)
			}
			if !slices.Contains(years, r.Year) {
				years = append(years, r.Year)
			}
		}
		sums[k] += r.Sales
	}
	slices.Sort(regions)
	slices.Sort(years)

	cells := make([][]int, len(regions))
	for i, region := range regions {
		cells[i] = make([]int, len(years))
		for j, year := range years {
			v, ok := sums[cell{region, year}]
			if !ok {
				return models.SalesPivot{}, fmt.Errorf("sales pivot: %w: no rows for %s/%d", ErrSparsePivot, region, year)
			}
			cells[i][j] = v
		}
	}
	return models.SalesPivot{Regions: regions, Years: years, Cells: cells}, nil
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}
