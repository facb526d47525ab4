package dataset

import (
	"fmt"
	"slices"
)

type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// IntRange is the half-open interval [Min, Max).
type IntRange struct {
	Min, Max int
}

// FloatRange is the interval [Min, Max) sampled uniformly.
type FloatRange struct {
	Min, Max float64
}

// Catalog holds every constant the synthesizer needs. Coordinates[i]
// is the reference point of Regions[i].
type Catalog struct {
	Years        []int
	Regions      []string
	Coordinates  []Coordinate
	Products     []string
	Replicates   int
	Sales        IntRange
	Satisfaction FloatRange
	CO2          FloatRange
	Cost         FloatRange
}

const DefaultSeed uint64 = 42

func DefaultCatalog() Catalog {
	return Catalog{
		Years:   []int{2020, 2021, 2022, 2023, 2024},
		Regions: []string{"North America", "Europe", "Asia", "South America", "Africa"},
		Coordinates: []Coordinate{
			{Latitude: 40.7, Longitude: -74.0},
			{Latitude: 51.5, Longitude: -0.1},
			{Latitude: 35.6, Longitude: 139.7},
			{Latitude: -23.5, Longitude: -46.6},
			{Latitude: -1.2, Longitude: 36.8},
		},
		Products:     []string{"Solar Panels", "Wind Turbines", "Eco Batteries", "Water Purifiers"},
		Replicates:   10,
		Sales:        IntRange{Min: 50, Max: 500},
		Satisfaction: FloatRange{Min: 3.5, Max: 5.0},
		CO2:          FloatRange{Min: 100, Max: 1000},
		Cost:         FloatRange{Min: 1000, Max: 10000},
	}
}

// Size is the number of fact rows the catalog produces.
func (c Catalog) Size() int {
	return len(c.Years) * len(c.Regions) * len(c.Products) * c.Replicates
}

func (c Catalog) CoordinateOf(region string) (Coordinate, bool) {
	i := slices.Index(c.Regions, region)
	if i < 0 || i >= len(c.Coordinates) {
		return Coordinate{}, false
	}
	return c.Coordinates[i], true
}

func (c Catalog) Validate() error {
	if len(c.Regions) != len(c.Coordinates) {
		return fmt.Errorf("%w: %d regions, %d coordinates", ErrCoordinateMismatch, len(c.Regions), len(c.Coordinates))
	}
	if len(c.Years) == 0 || len(c.Regions) == 0 || len(c.Products) == 0 {
		return fmt.Errorf("%w: years, regions and products must be non-empty", ErrInvalidCatalog)
	}
	if c.Replicates <= 0 {
		return fmt.Errorf("%w: replicates must be positive, got %d", ErrInvalidCatalog, c.Replicates)
	}
	if c.Sales.Max <= c.Sales.Min {
		return fmt.Errorf("%w: empty sales range [%d, %d)", ErrInvalidCatalog, c.Sales.Min, c.Sales.Max)
	}
	for name, r := range map[string]FloatRange{
		"customer_satisfaction": c.Satisfaction,
		"co2_reduction":         c.CO2,
		"production_cost":       c.Cost,
	} {
		if r.Max <= r.Min {
			return fmt.Errorf("%w: empty %s range [%g, %g)", ErrInvalidCatalog, name, r.Min, r.Max)
		}
	}
	if slices.ContainsFunc(c.Regions, func(r string) bool { return r == "" }) {
		return fmt.Errorf("%w: blank region name", ErrInvalidCatalog)
	}
	return nil
}
