package dataset

import "errors"

var (
	// ErrEmptyTable is returned when a grouping or pivot runs over a
	// table with no rows.
	ErrEmptyTable = errors.New("dataset: empty table")

	// ErrMissingColumn is returned when an operation needs a column
	// the table does not carry. It is wrapped with the column name.
	ErrMissingColumn = errors.New("dataset: missing column")

	// ErrSparsePivot is returned when a (region, year) cell of the
	// sales pivot has no source rows.
	ErrSparsePivot = errors.New("dataset: sparse pivot")

	ErrCoordinateMismatch = errors.New("dataset: region and coordinate tables differ in length")
	ErrInvalidCatalog     = errors.New("dataset: invalid catalog")
)

// IsInvalidInput reports whether err is one of the invalid-input errors
// produced by aggregation and filtering.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrEmptyTable) || errors.Is(err, ErrMissingColumn) || errors.Is(err, ErrSparsePivot)
}
