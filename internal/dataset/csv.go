package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"ecotech-dashboard/internal/models"
)

const (
	batchSize  = 1000
	maxWorkers = 8
)

// ReadCSV parses a fact table with a header row. Only the columns named
// in the header are carried by the result; unknown headers are ignored.
// Records are parsed in batches by a bounded worker pool and keep their
// file order.
func ReadCSV(ctx context.Context, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv: %w", ErrEmptyTable)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	positions := make(map[Column]int)
	var cols []Column
	for i, name := range header {
		c, ok := ParseColumn(name)
		if !ok {
			continue
		}
		if _, dup := positions[c]; dup {
			return nil, fmt.Errorf("read csv header: duplicate column %q", name)
		}
		positions[c] = i
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("read csv header: no known columns in %v", header)
	}

	var rows []models.FactRow
	batch := make([][]string, 0, batchSize)
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		batch = append(batch, record)

		if len(batch) == batchSize {
			parsed, err := parseBatch(ctx, batch, positions, line+1)
			if err != nil {
				return nil, err
			}
			rows = append(rows, parsed...)
			line += len(batch)
			batch = make([][]string, 0, batchSize)
		}
	}
	if len(batch) > 0 {
		parsed, err := parseBatch(ctx, batch, positions, line+1)
		if err != nil {
			return nil, err
		}
		rows = append(rows, parsed...)
	}

	return NewTable(rows, cols...), nil
}

func parseBatch(ctx context.Context, batch [][]string, positions map[Column]int, firstLine int) ([]models.FactRow, error) {
	out := make([]models.FactRow, len(batch))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for i, record := range batch {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := parseRecord(record, positions)
			if err != nil {
				return fmt.Errorf("read csv line %d: %w", firstLine+i, err)
			}
			out[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseRecord(record []string, positions map[Column]int) (models.FactRow, error) {
	var row models.FactRow
	for c, pos := range positions {
		if pos >= len(record) {
			return row, fmt.Errorf("column %s: short record", c)
		}
		v := strings.TrimSpace(record[pos])
		var err error
		switch c {
		case ColYear:
			row.Year, err = strconv.Atoi(v)
		case ColRegion:
			row.Region = v
		case ColProduct:
			row.Product = v
		case ColSales:
			row.Sales, err = strconv.Atoi(v)
		case ColCustomerSatisfaction:
			row.CustomerSatisfaction, err = strconv.ParseFloat(v, 64)
		case ColCO2Reduction:
			row.CO2Reduction, err = strconv.ParseFloat(v, 64)
		case ColProductionCost:
			row.ProductionCost, err = strconv.ParseFloat(v, 64)
		case ColLatitude:
			row.Latitude, err = strconv.ParseFloat(v, 64)
		case ColLongitude:
			row.Longitude, err = strconv.ParseFloat(v, 64)
		}
		if err != nil {
			return row, fmt.Errorf("column %s: %w", c, err)
		}
	}
	return row, nil
}

// WriteCSV writes the carried columns of t, header first. Floats are
// written with the shortest representation that parses back exactly.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cols := t.Columns()

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = string(c)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(cols))
	for _, r := range t.Rows {
		for i, c := range cols {
			record[i] = FormatValue(r, c)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatValue renders one field of r as text.
func FormatValue(r models.FactRow, c Column) string {
	switch c {
	case ColYear:
		return strconv.Itoa(r.Year)
	case ColRegion:
		return r.Region
	case ColProduct:
		return r.Product
	case ColSales:
		return strconv.Itoa(r.Sales)
	case ColCustomerSatisfaction:
		return strconv.FormatFloat(r.CustomerSatisfaction, 'g', -1, 64)
	case ColCO2Reduction:
		return strconv.FormatFloat(r.CO2Reduction, 'g', -1, 64)
	case ColProductionCost:
		return strconv.FormatFloat(r.ProductionCost, 'g', -1, 64)
	case ColLatitude:
		return strconv.FormatFloat(r.Latitude, 'g', -1, 64)
	case ColLongitude:
		return strconv.FormatFloat(r.Longitude, 'g', -1, 64)
	}
	return ""
}
