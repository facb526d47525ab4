package dataset

import (
	"fmt"
	"slices"
	"strings"

	"ecotech-dashboard/internal/models"
)

type Column string

const (
	ColYear                 Column = "year"
	ColRegion               Column = "region"
	ColProduct              Column = "product"
	ColSales                Column = "sales"
	ColCustomerSatisfaction Column = "customer_satisfaction"
	ColCO2Reduction         Column = "co2_reduction"
	ColProductionCost       Column = "production_cost"
	ColLatitude             Column = "latitude"
	ColLongitude            Column = "longitude"
)

// AllColumns lists the fact table columns in canonical order.
var AllColumns = []Column{
	ColYear, ColRegion, ColProduct, ColSales, ColCustomerSatisfaction,
	ColCO2Reduction, ColProductionCost, ColLatitude, ColLongitude,
}

// ParseColumn maps a header name onto a Column. Matching ignores case,
// so the capitalized names of older exports ("Customer_Satisfaction")
// are accepted too.
func ParseColumn(name string) (Column, bool) {
	c := Column(strings.ToLower(strings.TrimSpace(name)))
	if slices.Contains(AllColumns, c) {
		return c, true
	}
	return "", false
}

// Table is the fact table. Rows always have every field, but only the
// fields named by the table's column set carry data; a table read from
// a CSV without a "sales" header, for instance, has zero sales that no
// aggregation may use.
type Table struct {
	Rows    []models.FactRow
	columns []Column
}

// NewTable wraps rows carrying exactly cols. A table without columns
// fails every aggregation with ErrMissingColumn.
func NewTable(rows []models.FactRow, cols ...Column) *Table {
	present := make([]Column, 0, len(cols))
	for _, c := range AllColumns {
		if slices.Contains(cols, c) {
			present = append(present, c)
		}
	}
	return &Table{Rows: rows, columns: present}
}

// NewFullTable wraps rows carrying all nine columns.
func NewFullTable(rows []models.FactRow) *Table {
	return NewTable(rows, AllColumns...)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Columns returns the carried columns in canonical order.
func (t *Table) Columns() []Column {
	if t == nil {
		return nil
	}
	return slices.Clone(t.columns)
}

func (t *Table) Has(c Column) bool {
	return t != nil && slices.Contains(t.columns, c)
}

// Select projects the table onto cols. Dropped fields are zeroed.
func (t *Table) Select(cols ...Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("select: %w: no columns given", ErrMissingColumn)
	}
	if err := t.requireColumns(cols...); err != nil {
		return nil, err
	}
	rows := make([]models.FactRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = project(r, cols)
	}
	return NewTable(rows, cols...), nil
}

func (t *Table) requireColumns(cols ...Column) error {
	for _, c := range cols {
		if !t.Has(c) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return nil
}

// requireRows is the precondition of every grouping and pivot.
func (t *Table) requireRows(cols ...Column) error {
	if t.Len() == 0 {
		return ErrEmptyTable
	}
	return t.requireColumns(cols...)
}

func project(r models.FactRow, cols []Column) models.FactRow {
	var out models.FactRow
	for _, c := range cols {
		switch c {
		case ColYear:
			out.Year = r.Year
		case ColRegion:
			out.Region = r.Region
		case ColProduct:
			out.Product = r.Product
		case ColSales:
			out.Sales = r.Sales
		case ColCustomerSatisfaction:
			out.CustomerSatisfaction = r.CustomerSatisfaction
		case ColCO2Reduction:
			out.CO2Reduction = r.CO2Reduction
		case ColProductionCost:
			out.ProductionCost = r.ProductionCost
		case ColLatitude:
			out.Latitude = r.Latitude
		case ColLongitude:
			out.Longitude = r.Longitude
		}
	}
	return out
}
