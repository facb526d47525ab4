package dataset

import (
	"math/rand/v2"

	"ecotech-dashboard/internal/models"
)

// NewGenerator returns a PCG generator seeded once with seed. Callers
// own it; nothing in this package keeps a global source.
func NewGenerator(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Synthesize builds the fact table for cat. Rows are ordered year,
// region, product, replicate from outermost to innermost. Each measure
// is drawn as one full-length vector, in the order sales, customer
// satisfaction, CO2 reduction, production cost, so a given seed always
// yields the same table.
func Synthesize(rng *rand.Rand, cat Catalog) (*Table, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	n := cat.Size()
	rows := make([]models.FactRow, 0, n)
	for _, year := range cat.Years {
		for i, region := range cat.Regions {
			coord := cat.Coordinates[i]
			for _, product := range cat.Products {
				for range cat.Replicates {
					rows = append(rows, models.FactRow{
						Year:      year,
						Region:    region,
						Product:   product,
						Latitude:  coord.Latitude,
						Longitude: coord.Longitude,
					})
				}
			}
		}
	}

	sales := drawInts(rng, n, cat.Sales)
	satisfaction := drawFloats(rng, n, cat.Satisfaction)
	co2 := drawFloats(rng, n, cat.CO2)
	cost := drawFloats(rng, n, cat.Cost)

	for i := range rows {
		rows[i].Sales = sales[i]
		rows[i].CustomerSatisfaction = satisfaction[i]
		rows[i].CO2Reduction = co2[i]
		rows[i].ProductionCost = cost[i]
	}

	return NewFullTable(rows), nil
}

func drawInts(rng *rand.Rand, n int, r IntRange) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = r.Min + rng.IntN(r.Max-r.Min)
	}
	return out
}

func drawFloats(rng *rand.Rand, n int, r FloatRange) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Min + (r.Max-r.Min)*rng.Float64()
	}
	return out
}
