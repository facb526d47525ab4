package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"ecotech-dashboard/internal/charts"
	"ecotech-dashboard/internal/dataset"
	"ecotech-dashboard/internal/export"
	"ecotech-dashboard/internal/models"
	"ecotech-dashboard/internal/observability"
)

const (
	maxRenderWorkers = 4

	// FocusRegion is the region the density and violin charts zoom into.
	FocusRegion = "North America"
)

// ErrNotLoaded is returned by every query before a dataset is loaded.
var ErrNotLoaded = errors.New("analytics: no dataset loaded")

// DefaultParallelQuery is the subset drawn by the parallel coordinates
// chart until the user picks another one.
var DefaultParallelQuery = Query{Year: 2021, Product: "Eco Batteries"}

// PrecomputedData is everything derived from one fact table. It is
// built once per load and never mutated afterwards.
type PrecomputedData struct {
	Table        *dataset.Table
	Views        charts.Views
	Figures      map[string]charts.Figure
	SVGs         map[string][]byte
	Source       string
	LastModified time.Time
}

type Analytics struct {
	mu          sync.RWMutex
	precomputed *PrecomputedData
	catalog     dataset.Catalog
	loads       atomic.Int64
	logger      *slog.Logger
}

func NewAnalytics(logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		catalog: dataset.DefaultCatalog(),
		logger:  logger,
	}
}

// Synthesize generates the fact table from seed and precomputes every
// view and chart.
func (a *Analytics) Synthesize(ctx context.Context, seed uint64) error {
	start := time.Now()
	t, err := dataset.Synthesize(dataset.NewGenerator(seed), a.catalog)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	a.logger.Info("dataset synthesized", "seed", seed, "rows", t.Len(), "duration", time.Since(start))
	return a.setTable(ctx, t, fmt.Sprintf("synthesized (seed %d)", seed))
}

// LoadFromCSV replaces the fact table with the contents of filename.
func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) error {
	start := time.Now()
	a.logger.Info("processing CSV file", "filename", filename)

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	t, err := dataset.ReadCSV(ctx, file)
	if err != nil {
		return fmt.Errorf("process csv: %w", err)
	}

	duration := time.Since(start)
	a.logger.Info("csv processing complete",
		"records", t.Len(),
		"columns", len(t.Columns()),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(t.Len())/duration.Seconds()))

	return a.setTable(ctx, t, filename)
}

// SetTable installs an already built table.
func (a *Analytics) SetTable(ctx context.Context, t *dataset.Table) error {
	return a.setTable(ctx, t, "in-memory")
}

func (a *Analytics) setTable(ctx context.Context, t *dataset.Table, source string) error {
	ctx, span := observability.StartSpan(ctx, "analytics.precompute")
	defer span.End(a.logger)
	span.SetTag("source", source)

	p, err := precompute(ctx, t, a.logger)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("precompute: %w", err)
	}
	p.Source = source

	a.mu.Lock()
	a.precomputed = p
	a.mu.Unlock()

	a.loads.Add(1)
	a.logger.Info("analytics ready",
		"source", source,
		"records", t.Len(),
		"figures", len(p.Figures),
		"svgs", len(p.SVGs),
	)
	return nil
}

func precompute(ctx context.Context, t *dataset.Table, logger *slog.Logger) (*PrecomputedData, error) {
	views, err := buildViews(t)
	if err != nil {
		return nil, err
	}

	svgs, err := renderSVGs(ctx, views, logger)
	if err != nil {
		return nil, err
	}

	return &PrecomputedData{
		Table:        t,
		Views:        views,
		Figures:      charts.BuildAll(views),
		SVGs:         svgs,
		LastModified: time.Now(),
	}, nil
}

func buildViews(t *dataset.Table) (charts.Views, error) {
	v := charts.Views{Facts: t.Rows}
	var err error

	if v.RegionCO2, err = dataset.RegionCO2View(t); err != nil {
		return v, err
	}
	if v.GeoImpact, err = dataset.GeoImpactView(t); err != nil {
		return v, err
	}
	if v.Summary, err = dataset.ProductionSummaryView(t); err != nil {
		return v, err
	}
	if v.Pivot, err = dataset.SalesPivotView(t); err != nil {
		return v, err
	}
	if v.Profiles, err = dataset.ProductProfileView(t); err != nil {
		return v, err
	}
	if v.Sunburst, err = dataset.SunburstView(t); err != nil {
		return v, err
	}

	// Loaded tables may not contain the focus region; fall back to the
	// first region present.
	v.FocusRegion = FocusRegion
	focus, err := dataset.FilterByRegion(t, v.FocusRegion)
	if err != nil {
		return v, err
	}
	if focus.Len() == 0 {
		v.FocusRegion = t.Rows[0].Region
		if focus, err = dataset.FilterByRegion(t, v.FocusRegion); err != nil {
			return v, err
		}
	}
	v.Focus = focus.Rows
	if v.Distribution, err = dataset.SatisfactionDistribution(focus); err != nil {
		return v, err
	}

	sub, err := dataset.Filter(t, DefaultParallelQuery.Predicates()...)
	if err != nil {
		return v, err
	}
	v.Parallel = dataset.WithRegionColors(sub.Rows)
	v.ParallelName = DefaultParallelQuery.Title()
	return v, nil
}

// renderSVGs draws every static chart. A chart the data cannot support,
// such as a density plot over constant values, is logged and left out;
// only cancellation fails the load.
func renderSVGs(ctx context.Context, v charts.Views, logger *slog.Logger) (map[string][]byte, error) {
	names := slices.Sorted(maps.Keys(charts.SVGCharts))
	out := make([][]byte, len(names))
	errs := make([]error, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxRenderWorkers)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i], errs[i] = renderSVG(name, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	svgs := make(map[string][]byte, len(names))
	for i, name := range names {
		if errs[i] != nil {
			logger.Warn("svg chart skipped", "chart", name, "error", errs[i])
			continue
		}
		svgs[name] = out[i]
	}
	return svgs, nil
}

// renderSVG turns renderer panics on degenerate scales into errors.
func renderSVG(name string, v charts.Views) (svg []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render %s: %v", name, r)
		}
	}()
	var buf bytes.Buffer
	if err := charts.SVGCharts[name](&buf, v); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (a *Analytics) snapshot() (*PrecomputedData, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.precomputed == nil {
		return nil, ErrNotLoaded
	}
	return a.precomputed, nil
}

func (a *Analytics) Ready() bool {
	_, err := a.snapshot()
	return err == nil
}

// Table returns the current fact table.
func (a *Analytics) Table() (*dataset.Table, error) {
	p, err := a.snapshot()
	if err != nil {
		return nil, err
	}
	return p.Table, nil
}

// Facts returns the rows matching q, at most q.Limit of them, and the
// total number of matches.
func (a *Analytics) Facts(q Query) ([]models.FactRow, int, error) {
	p, err := a.snapshot()
	if err != nil {
		return nil, 0, err
	}
	t, err := dataset.Filter(p.Table, q.Predicates()...)
	if err != nil {
		return nil, 0, err
	}
	rows := t.Rows
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, t.Len(), nil
}

// view serves the precomputed value for an unfiltered query and
// recomputes over the filtered subset otherwise.
func view[T any](a *Analytics, q Query, cached func(charts.Views) T, compute func(*dataset.Table) (T, error)) (T, error) {
	var zero T
	p, err := a.snapshot()
	if err != nil {
		return zero, err
	}
	if q.IsZero() {
		return cached(p.Views), nil
	}
	t, err := dataset.Filter(p.Table, q.Predicates()...)
	if err != nil {
		return zero, err
	}
	return compute(t)
}

func (a *Analytics) GeoImpact(q Query) ([]models.GeoImpact, error) {
	return view(a, q, func(v charts.Views) []models.GeoImpact { return v.GeoImpact }, dataset.GeoImpactView)
}

func (a *Analytics) ProductionSummary(q Query) ([]models.ProductionSummary, error) {
	return view(a, q, func(v charts.Views) []models.ProductionSummary { return v.Summary }, dataset.ProductionSummaryView)
}

func (a *Analytics) SalesPivot(q Query) (models.SalesPivot, error) {
	return view(a, q, func(v charts.Views) models.SalesPivot { return v.Pivot }, dataset.SalesPivotView)
}

func (a *Analytics) RegionCO2(q Query) ([]models.RegionCO2, error) {
	return view(a, q, func(v charts.Views) []models.RegionCO2 { return v.RegionCO2 }, dataset.RegionCO2View)
}

func (a *Analytics) ProductProfiles(q Query) ([]models.ProductProfile, error) {
	return view(a, q, func(v charts.Views) []models.ProductProfile { return v.Profiles }, dataset.ProductProfileView)
}

// Figures returns every precomputed Plotly figure by name.
func (a *Analytics) Figures() (map[string]charts.Figure, error) {
	p, err := a.snapshot()
	if err != nil {
		return nil, err
	}
	return p.Figures, nil
}

// SVG returns a server-rendered chart.
func (a *Analytics) SVG(name string) ([]byte, bool) {
	p, err := a.snapshot()
	if err != nil {
		return nil, false
	}
	b, ok := p.SVGs[name]
	return b, ok
}

// Parallel builds the parallel coordinates figure for the subset q
// selects, along with the colored rows behind it.
func (a *Analytics) Parallel(q Query) (charts.Figure, []models.ColoredFactRow, error) {
	p, err := a.snapshot()
	if err != nil {
		return charts.Figure{}, nil, err
	}
	t, err := dataset.Filter(p.Table, q.Predicates()...)
	if err != nil {
		return charts.Figure{}, nil, err
	}
	rows := dataset.WithRegionColors(t.Rows)
	return charts.NewParallelCoordinates(rows, q.Title()), rows, nil
}

// ExportBundle returns the fact table and views for the exporters.
func (a *Analytics) ExportBundle() (export.Bundle, error) {
	p, err := a.snapshot()
	if err != nil {
		return export.Bundle{}, err
	}
	return export.Bundle{
		Facts:     p.Table,
		GeoImpact: p.Views.GeoImpact,
		Summary:   p.Views.Summary,
		Pivot:     p.Views.Pivot,
	}, nil
}

// Stats reports readiness, the data source and the size of every
// precomputed output.
func (a *Analytics) Stats() map[string]any {
	p, err := a.snapshot()
	if err != nil {
		return map[string]any{"ready": false, "loads": a.loads.Load()}
	}

	rows, cols := dataset.Shape(p.Table)
	return map[string]any{
		"ready":          true,
		"loads":          a.loads.Load(),
		"source":         p.Source,
		"record_count":   rows,
		"column_count":   cols,
		"last_processed": p.LastModified,
		"regions":        len(p.Views.RegionCO2),
		"groups":         len(p.Views.GeoImpact),
		"figures":        len(p.Figures),
		"svgs":           len(p.SVGs),
	}
}
