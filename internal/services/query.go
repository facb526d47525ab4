package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"ecotech-dashboard/internal/dataset"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Query selects a subset of the fact table. Zero fields match anything.
type Query struct {
	Year    int
	Region  string
	Product string
	Limit   int
}

// ParseQuery reads year, region, product and limit from URL parameters.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		Region:  strings.TrimSpace(values.Get("region")),
		Product: strings.TrimSpace(values.Get("product")),
		Limit:   DefaultLimit,
	}

	if s := strings.TrimSpace(values.Get("year")); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil || year <= 0 {
			return Query{}, fmt.Errorf("invalid year %q", s)
		}
		q.Year = year
	}

	if s := strings.TrimSpace(values.Get("limit")); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 || limit > MaxLimit {
			return Query{}, fmt.Errorf("limit must be between 1 and %d, got %q", MaxLimit, s)
		}
		q.Limit = limit
	}

	return q, nil
}

// IsZero reports whether q selects the whole table.
func (q Query) IsZero() bool {
	return q.Year == 0 && q.Region == "" && q.Product == ""
}

func (q Query) Predicates() []dataset.Predicate {
	var preds []dataset.Predicate
	if q.Year != 0 {
		preds = append(preds, dataset.YearIs(q.Year))
	}
	if q.Region != "" {
		preds = append(preds, dataset.RegionIs(q.Region))
	}
	if q.Product != "" {
		preds = append(preds, dataset.ProductIs(q.Product))
	}
	return preds
}

// Title names the subset, e.g. "Eco Batteries in 2021".
func (q Query) Title() string {
	subject := q.Product
	if subject == "" {
		subject = "All products"
	}
	var scope []string
	if q.Region != "" {
		scope = append(scope, q.Region)
	}
	if q.Year != 0 {
		scope = append(scope, strconv.Itoa(q.Year))
	}
	if len(scope) == 0 {
		return subject
	}
	return subject + " in " + strings.Join(scope, ", ")
}
