package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"ecotech-dashboard/internal/dataset"
	"ecotech-dashboard/internal/models"
)

const (
	SheetFacts     = "facts"
	SheetGeoImpact = "geo_impact"
	SheetSummary   = "production_summary"
	SheetPivot     = "sales_pivot"
)

// WriteXLSX writes a workbook with one sheet for the fact table and one
// per aggregate view.
func WriteXLSX(w io.Writer, b Bundle) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetFacts); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	if err := writeFacts(f, b.Facts); err != nil {
		return fmt.Errorf("export xlsx %s: %w", SheetFacts, err)
	}

	sheets := []struct {
		name  string
		write func(*excelize.File, string) error
	}{
		{SheetGeoImpact, func(f *excelize.File, s string) error { return writeGeoImpact(f, s, b.GeoImpact) }},
		{SheetSummary, func(f *excelize.File, s string) error { return writeSummary(f, s, b.Summary) }},
		{SheetPivot, func(f *excelize.File, s string) error { return writePivot(f, s, b.Pivot) }},
	}
	for _, sh := range sheets {
		if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("export xlsx %s: %w", sh.name, err)
		}
		if err := sh.write(f, sh.name); err != nil {
			return fmt.Errorf("export xlsx %s: %w", sh.name, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeFacts(f *excelize.File, t *dataset.Table) error {
	cols := t.Columns()
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = string(c)
	}
	if err := writeHeader(f, SheetFacts, headers); err != nil {
		return err
	}

	values := make([]any, len(cols))
	for i, r := range t.Rows {
		for j, c := range cols {
			values[j] = cellValue(r, c)
		}
		if err := writeRow(f, SheetFacts, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// cellValue keeps numeric columns numeric in the sheet.
func cellValue(r models.FactRow, c dataset.Column) any {
	switch c {
	case dataset.ColYear:
		return r.Year
	case dataset.ColSales:
		return r.Sales
	case dataset.ColCustomerSatisfaction:
		return r.CustomerSatisfaction
	case dataset.ColCO2Reduction:
		return r.CO2Reduction
	case dataset.ColProductionCost:
		return r.ProductionCost
	case dataset.ColLatitude:
		return r.Latitude
	case dataset.ColLongitude:
		return r.Longitude
	}
	return dataset.FormatValue(r, c)
}

func writeGeoImpact(f *excelize.File, sheet string, groups []models.GeoImpact) error {
	err := writeHeader(f, sheet, []string{"region", "product", "latitude", "longitude",
		"sales", "customer_satisfaction", "co2_reduction", "production_cost"})
	if err != nil {
		return err
	}
	for i, g := range groups {
		err := writeRow(f, sheet, i+2, []any{g.Region, g.Product, g.Latitude, g.Longitude,
			g.Sales, g.CustomerSatisfaction, g.CO2Reduction, g.ProductionCost})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, sheet string, groups []models.ProductionSummary) error {
	err := writeHeader(f, sheet, []string{"region", "product", "sales", "customer_satisfaction",
		"co2_reduction", "production_cost", "total_production"})
	if err != nil {
		return err
	}
	for i, g := range groups {
		err := writeRow(f, sheet, i+2, []any{g.Region, g.Product, g.Sales, g.CustomerSatisfaction,
			g.CO2Reduction, g.ProductionCost, g.TotalProduction})
		if err != nil {
			return err
		}
	}
	return nil
}

func writePivot(f *excelize.File, sheet string, p models.SalesPivot) error {
	headers := []string{"region"}
	for _, y := range p.Years {
		headers = append(headers, strconv.Itoa(y))
	}
	if err := writeHeader(f, sheet, headers); err != nil {
		return err
	}
	for i, region := range p.Regions {
		values := []any{region}
		for _, v := range p.Cells[i] {
			values = append(values, v)
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}
