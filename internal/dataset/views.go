package dataset

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"

	"ecotech-dashboard/internal/models"
)

// densityPoints is the number of points each KDE curve is sampled at.
const densityPoints = 64

// RegionCO2View totals CO2 reduction per region. Regions keep their
// order of first appearance, which is the catalog order for a
// synthesized table.
func RegionCO2View(t *Table) ([]models.RegionCO2, error) {
	if err := t.requireRows(ColRegion, ColCO2Reduction); err != nil {
		return nil, fmt.Errorf("region co2 view: %w", err)
	}

	var out []models.RegionCO2
	index := make(map[string]int)
	for _, r := range t.Rows {
		i, ok := index[r.Region]
		if !ok {
			i = len(out)
			index[r.Region] = i
			out = append(out, models.RegionCO2{Region: r.Region})
		}
		out[i].CO2Reduction += r.CO2Reduction
		out[i].Rows++
	}
	return out, nil
}

// SunburstView builds the year -> region -> product hierarchy. Node
// sales are sums over the rows below the node, so every parent equals
// the total of its children. Node satisfaction is the sales-weighted
// mean of the rows below it. Parents precede their children.
func SunburstView(t *Table) ([]models.SunburstNode, error) {
	if err := t.requireRows(ColYear, ColRegion, ColProduct, ColSales, ColCustomerSatisfaction); err != nil {
		return nil, fmt.Errorf("sunburst view: %w", err)
	}

	type acc struct {
		node         models.SunburstNode
		satisfaction []float64
		weighted     float64
	}
	nodes := make(map[string]*acc)
	touch := func(id, label, parent string, r models.FactRow) {
		a := nodes[id]
		if a == nil {
			a = &acc{node: models.SunburstNode{ID: id, Label: label, Parent: parent}}
			nodes[id] = a
		}
		a.node.Sales += r.Sales
		a.satisfaction = append(a.satisfaction, r.CustomerSatisfaction)
		a.weighted += float64(r.Sales) * r.CustomerSatisfaction
	}

	for _, r := range t.Rows {
		yearID := strconv.Itoa(r.Year)
		regionID := yearID + "/" + r.Region
		productID := regionID + "/" + r.Product
		touch(yearID, yearID, "", r)
		touch(regionID, r.Region, yearID, r)
		touch(productID, r.Product, regionID, r)
	}

	out := make([]models.SunburstNode, 0, len(nodes))
	for _, a := range nodes {
		if a.node.Sales > 0 {
			a.node.CustomerSatisfaction = a.weighted / float64(a.node.Sales)
		} else {
			a.node.CustomerSatisfaction = stats.Mean(a.satisfaction)
		}
		out = append(out, a.node)
	}
	slices.SortFunc(out, func(a, b models.SunburstNode) int {
		return cmp.Or(cmp.Compare(depth(a), depth(b)), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func depth(n models.SunburstNode) int {
	return strings.Count(n.ID, "/")
}

// ProductProfileView averages the four measures per product and scales
// each measure to [0, 1] across products. A measure that is equal for
// every product scales to 1.
func ProductProfileView(t *Table) ([]models.ProductProfile, error) {
	if err := t.requireRows(ColProduct, ColSales, ColCustomerSatisfaction, ColCO2Reduction, ColProductionCost); err != nil {
		return nil, fmt.Errorf("product profile view: %w", err)
	}

	var order []string
	groups := make(map[string]*measures)
	sales := make(map[string][]float64)
	for _, r := range t.Rows {
		m := groups[r.Product]
		if m == nil {
			m = &measures{}
			groups[r.Product] = m
			order = append(order, r.Product)
		}
		m.add(r)
		sales[r.Product] = append(sales[r.Product], float64(r.Sales))
	}

	out := make([]models.ProductProfile, len(order))
	for i, p := range order {
		m := groups[p]
		out[i] = models.ProductProfile{
			Product:              p,
			Sales:                stats.Mean(sales[p]),
			CustomerSatisfaction: stats.Mean(m.satisfaction),
			CO2Reduction:         stats.Mean(m.co2),
			ProductionCost:       stats.Mean(m.cost),
		}
	}

	normalize(out, func(p *models.ProductProfile) *float64 { return &p.Sales })
	normalize(out, func(p *models.ProductProfile) *float64 { return &p.CustomerSatisfaction })
	normalize(out, func(p *models.ProductProfile) *float64 { return &p.CO2Reduction })
	normalize(out, func(p *models.ProductProfile) *float64 { return &p.ProductionCost })
	return out, nil
}

func normalize(ps []models.ProductProfile, field func(*models.ProductProfile) *float64) {
	if len(ps) == 0 {
		return
	}
	lo, hi := *field(&ps[0]), *field(&ps[0])
	for i := range ps {
		v := *field(&ps[i])
		lo, hi = min(lo, v), max(hi, v)
	}
	for i := range ps {
		f := field(&ps[i])
		if hi == lo {
			*f = 1
			continue
		}
		*f = (*f - lo) / (hi - lo)
	}
}

// SatisfactionDistribution summarizes customer satisfaction per
// product: sorted samples, quartiles, mean and a kernel density
// estimate over the sample range.
func SatisfactionDistribution(t *Table) ([]models.Distribution, error) {
	if err := t.requireRows(ColProduct, ColCustomerSatisfaction); err != nil {
		return nil, fmt.Errorf("satisfaction distribution: %w", err)
	}

	var order []string
	samples := make(map[string][]float64)
	for _, r := range t.Rows {
		if _, ok := samples[r.Product]; !ok {
			order = append(order, r.Product)
		}
		samples[r.Product] = append(samples[r.Product], r.CustomerSatisfaction)
	}

	out := make([]models.Distribution, 0, len(order))
	for _, p := range order {
		out = append(out, summarize(p, samples[p]))
	}
	return out, nil
}

func summarize(label string, xs []float64) models.Distribution {
	s := stats.Sample{Xs: slices.Clone(xs)}
	s.Sort()

	d := models.Distribution{
		Label:   label,
		Samples: s.Xs,
		Mean:    stats.Mean(s.Xs),
		Q1:      s.Quantile(0.25),
		Median:  s.Quantile(0.5),
		Q3:      s.Quantile(0.75),
	}

	if len(s.Xs) < 2 {
		return d
	}
	bw := stats.BandwidthScott(s)
	if !(bw > 0) {
		return d
	}
	kde := stats.KDE{Sample: s, Bandwidth: bw}
	lo, hi := s.Bounds()
	for _, x := range vec.Linspace(lo-bw, hi+bw, densityPoints) {
		d.Density = append(d.Density, models.CurvePair{X: x, Y: kde.PDF(x)})
	}
	return d
}
