package dataset

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
)

// fieldNames maps columns onto the struct field names gota derives
// from models.FactRow.
var fieldNames = map[Column]string{
	ColYear:                 "Year",
	ColRegion:               "Region",
	ColProduct:              "Product",
	ColSales:                "Sales",
	ColCustomerSatisfaction: "CustomerSatisfaction",
	ColCO2Reduction:         "CO2Reduction",
	ColProductionCost:       "ProductionCost",
	ColLatitude:             "Latitude",
	ColLongitude:            "Longitude",
}

// Shape returns (rows, columns) of t.
func Shape(t *Table) (int, int) {
	return t.Len(), len(t.Columns())
}

// Preview renders the first n rows of t as a gota DataFrame, restricted
// to the columns t carries.
func Preview(t *Table, n int) (string, error) {
	if t.Len() == 0 {
		return "", ErrEmptyTable
	}
	n = min(max(n, 1), t.Len())

	df := dataframe.LoadStructs(t.Rows[:n])
	if df.Err != nil {
		return "", fmt.Errorf("preview: %w", df.Err)
	}

	cols := t.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = fieldNames[c]
	}
	df = df.Select(names)
	if df.Err != nil {
		return "", fmt.Errorf("preview: %w", df.Err)
	}

	rows, ncols := Shape(t)
	return fmt.Sprintf("shape: (%d, %d)\n%s", rows, ncols, df.String()), nil
}
