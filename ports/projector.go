package ports

import "goanova/domain/table"

// Projector reduces a set of numeric columns to nComponents orthogonal
// factor columns. Implementations must fail explicitly when nComponents
// exceeds the number of input columns and when the selected columns carry
// missing values; silent truncation is not allowed.
type Projector interface {
	FitTransform(tbl *table.Table, columns []string, nComponents int) (*table.Table, error)
}
