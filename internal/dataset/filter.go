package dataset

import (
	"fmt"

	"ecotech-dashboard/internal/models"
)

// Predicate is an equality test on a single column.
type Predicate struct {
	Column Column
	match  func(models.FactRow) bool
	value  any
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s == %v", p.Column, p.value)
}

func YearIs(year int) Predicate {
	return Predicate{Column: ColYear, value: year, match: func(r models.FactRow) bool { return r.Year == year }}
}

func RegionIs(region string) Predicate {
	return Predicate{Column: ColRegion, value: region, match: func(r models.FactRow) bool { return r.Region == region }}
}

func ProductIs(product string) Predicate {
	return Predicate{Column: ColProduct, value: product, match: func(r models.FactRow) bool { return r.Product == product }}
}

// Filter keeps the rows matching every predicate, in table order. The
// result carries the same columns as t. Filtering an empty table is
// not an error; filtering on a column t lacks is.
func Filter(t *Table, preds ...Predicate) (*Table, error) {
	if t == nil {
		return nil, fmt.Errorf("filter: %w", ErrEmptyTable)
	}
	for _, p := range preds {
		if err := t.requireColumns(p.Column); err != nil {
			return nil, fmt.Errorf("filter %s: %w", p, err)
		}
	}

	rows := make([]models.FactRow, 0)
	for _, r := range t.Rows {
		if matchesAll(r, preds) {
			rows = append(rows, r)
		}
	}
	return NewTable(rows, t.columns...), nil
}

func FilterByYear(t *Table, year int) (*Table, error) {
	return Filter(t, YearIs(year))
}

func FilterByRegion(t *Table, region string) (*Table, error) {
	return Filter(t, RegionIs(region))
}

func FilterByProduct(t *Table, product string) (*Table, error) {
	return Filter(t, ProductIs(product))
}

func matchesAll(r models.FactRow, preds []Predicate) bool {
	for _, p := range preds {
		if !p.match(r) {
			return false
		}
	}
	return true
}

// WithRegionColors appends a color index per region, numbering regions
// by first appearance in rows.
func WithRegionColors(rows []models.FactRow) []models.ColoredFactRow {
	index := make(map[string]int)
	out := make([]models.ColoredFactRow, len(rows))
	for i, r := range rows {
		idx, ok := index[r.Region]
		if !ok {
			idx = len(index)
			index[r.Region] = idx
		}
		out[i] = models.ColoredFactRow{FactRow: r, RegionColor: idx}
	}
	return out
}
