// Package export writes the fact table and its aggregate views as CSV,
// XLSX workbooks or Parquet files.
package export

import (
	"fmt"
	"io"
	"strings"

	"ecotech-dashboard/internal/dataset"
	"ecotech-dashboard/internal/models"
)

type Format string

const (
	CSV     Format = "csv"
	XLSX    Format = "xlsx"
	Parquet Format = "parquet"
)

var Formats = []Format{CSV, XLSX, Parquet}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case CSV, XLSX, Parquet:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case Parquet:
		return "application/vnd.apache.parquet"
	}
	return "application/octet-stream"
}

// Bundle is everything an export may contain. CSV and Parquet only
// carry the fact table; the workbook carries the views as well.
type Bundle struct {
	Facts     *dataset.Table
	GeoImpact []models.GeoImpact
	Summary   []models.ProductionSummary
	Pivot     models.SalesPivot
}

// Write encodes b in format f.
func Write(w io.Writer, f Format, b Bundle) error {
	if b.Facts.Len() == 0 {
		return fmt.Errorf("export %s: %w", f, dataset.ErrEmptyTable)
	}
	switch f {
	case CSV:
		return WriteCSV(w, b.Facts)
	case XLSX:
		return WriteXLSX(w, b)
	case Parquet:
		return WriteParquet(w, b.Facts)
	}
	return fmt.Errorf("unknown export format %q", f)
}

func WriteCSV(w io.Writer, t *dataset.Table) error {
	if err := dataset.WriteCSV(w, t); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}
