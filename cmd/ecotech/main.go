// Command ecotech synthesizes the EcoTech fact table and prints or
// exports it and its aggregate views without starting the server.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ecotech-dashboard/internal/dataset"
	"ecotech-dashboard/internal/export"
)

var viewNames = []string{"geo", "summary", "pivot", "region-co2", "profiles"}

type rootFlags struct {
	seed uint64
	csv  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "ecotech",
		Short:         "Inspect and export the EcoTech sales dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Uint64Var(&flags.seed, "seed", dataset.DefaultSeed, "Seed for the synthesized dataset")
	root.PersistentFlags().StringVar(&flags.csv, "csv", "", "Read the fact table from a CSV file instead of synthesizing it")

	root.AddCommand(newPreviewCmd(flags), newViewsCmd(flags), newExportCmd(flags))
	return root
}

func (f *rootFlags) table(ctx context.Context) (*dataset.Table, error) {
	if f.csv == "" {
		return dataset.Synthesize(dataset.NewGenerator(f.seed), dataset.DefaultCatalog())
	}
	file, err := os.Open(f.csv)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()
	return dataset.ReadCSV(ctx, file)
}

func newPreviewCmd(flags *rootFlags) *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the table shape and its first rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := flags.table(cmd.Context())
			if err != nil {
				return err
			}
			out, err := dataset.Preview(t, rows)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", 5, "Number of rows to print")
	return cmd
}

func newViewsCmd(flags *rootFlags) *cobra.Command {
	var view string
	cmd := &cobra.Command{
		Use:       "views",
		Short:     "Print an aggregate view as JSON",
		Long:      "Print an aggregate view as JSON. Views: geo, summary, pivot, region-co2, profiles.",
		Args:      cobra.NoArgs,
		ValidArgs: viewNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := flags.table(cmd.Context())
			if err != nil {
				return err
			}
			data, err := computeView(t, view)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		},
	}
	cmd.Flags().StringVar(&view, "view", "geo", "View to print")
	return cmd
}

func computeView(t *dataset.Table, view string) (any, error) {
	switch view {
	case "geo":
		return dataset.GeoImpactView(t)
	case "summary":
		return dataset.ProductionSummaryView(t)
	case "pivot":
		return dataset.SalesPivotView(t)
	case "region-co2":
		return dataset.RegionCO2View(t)
	case "profiles":
		return dataset.ProductProfileView(t)
	}
	return nil, fmt.Errorf("unknown view %q, want one of %v", view, viewNames)
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dataset as CSV, XLSX or Parquet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			t, err := flags.table(cmd.Context())
			if err != nil {
				return err
			}
			b, err := bundle(t)
			if err != nil {
				return err
			}

			// Encoders may close their sink, so write to memory first.
			var buf bytes.Buffer
			if err := export.Write(&buf, f, b); err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", buf.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(export.CSV), "Output format: csv, xlsx or parquet")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, stdout when empty")
	return cmd
}

// bundle computes the views the workbook carries.
func bundle(t *dataset.Table) (export.Bundle, error) {
	b := export.Bundle{Facts: t}
	var err error
	if b.GeoImpact, err = dataset.GeoImpactView(t); err != nil {
		return b, err
	}
	if b.Summary, err = dataset.ProductionSummaryView(t); err != nil {
		return b, err
	}
	if b.Pivot, err = dataset.SalesPivotView(t); err != nil {
		return b, err
	}
	return b, nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
