package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"ecotech-dashboard/internal/dataset"
)

// Schema returns the Arrow schema for the columns t carries.
func Schema(t *dataset.Table) *arrow.Schema {
	cols := t.Columns()
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: string(c), Type: arrowType(c)}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(c dataset.Column) arrow.DataType {
	switch c {
	case dataset.ColYear, dataset.ColSales:
		return arrow.PrimitiveTypes.Int64
	case dataset.ColRegion, dataset.ColProduct:
		return arrow.BinaryTypes.String
	}
	return arrow.PrimitiveTypes.Float64
}

// WriteParquet writes t as a single record batch.
func WriteParquet(w io.Writer, t *dataset.Table) error {
	mem := memory.NewGoAllocator()
	schema := Schema(t)

	rec := buildRecord(mem, schema, t)
	defer rec.Release()

	writer, err := pqarrow.NewFileWriter(schema, w, nil, pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(mem)))
	if err != nil {
		return fmt.Errorf("export parquet: create writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("export parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("export parquet: close: %w", err)
	}
	return nil
}

func buildRecord(mem memory.Allocator, schema *arrow.Schema, t *dataset.Table) arrow.Record {
	cols := t.Columns()
	arrays := make([]arrow.Array, len(cols))
	for i, c := range cols {
		b := array.NewBuilder(mem, schema.Field(i).Type)
		for _, r := range t.Rows {
			switch b := b.(type) {
			case *array.Int64Builder:
				switch c {
				case dataset.ColYear:
					b.Append(int64(r.Year))
				case dataset.ColSales:
					b.Append(int64(r.Sales))
				}
			case *array.StringBuilder:
				b.Append(dataset.FormatValue(r, c))
			case *array.Float64Builder:
				switch c {
				case dataset.ColCustomerSatisfaction:
					b.Append(r.CustomerSatisfaction)
				case dataset.ColCO2Reduction:
					b.Append(r.CO2Reduction)
				case dataset.ColProductionCost:
					b.Append(r.ProductionCost)
				case dataset.ColLatitude:
					b.Append(r.Latitude)
				case dataset.ColLongitude:
					b.Append(r.Longitude)
				}
			}
		}
		arrays[i] = b.NewArray()
		b.Release()
	}

	rec := array.NewRecord(schema, arrays, int64(t.Len()))
	for _, a := range arrays {
		a.Release()
	}
	return rec
}
