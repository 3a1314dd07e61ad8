package table

import (
	"math"
	"sort"

	"goanova/domain/core"
)

// Table is the tabular substrate the analysis engines operate on. Columns
// are float64 slices keyed by label; NaN encodes a missing value. Column
// order is preserved from insertion so result rows and matrix labels come
// out in a deterministic order.
//
// Engines never mutate a caller's table: every destructive path first takes
// a Clone, and the filtering operations return new tables.
type Table struct {
	labels  []string
	columns map[string][]float64
	rows    int
}

// Group holds the row indices belonging to one level of a grouping column.
type Group struct {
	Key  float64
	Rows []int
}

// New creates an empty table.
func New() *Table {
	return &Table{columns: make(map[string][]float64)}
}

// AddColumn appends a column. All columns must share the same length.
func (t *Table) AddColumn(label string, values []float64) error {
	if label == "" {
		return core.NewInvalidInputError("column label cannot be empty")
	}
	if _, ok := t.columns[label]; ok {
		return core.NewInvalidInputError("duplicate column label " + label)
	}
	if len(t.labels) > 0 && len(values) != t.rows {
		return core.NewInvalidInputError("column length mismatch for " + label)
	}
	col := make([]float64, len(values))
	copy(col, values)
	t.labels = append(t.labels, label)
	t.columns[label] = col
	t.rows = len(values)
	return nil
}

// Columns returns the column labels in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return t.rows
}

// HasColumn reports whether a column with the given label exists.
func (t *Table) HasColumn(label string) bool {
	_, ok := t.columns[label]
	return ok
}

// Column returns the values of a column. The slice is shared with the
// table; callers that intend to modify it must Clone first.
func (t *Table) Column(label string) ([]float64, error) {
	col, ok := t.columns[label]
	if !ok {
		return nil, core.NewColumnNotFoundError(label)
	}
	return col, nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New()
	for _, label := range t.labels {
		// AddColumn copies the backing slice.
		_ = out.AddColumn(label, t.columns[label])
	}
	return out
}

// Select returns a new table holding copies of the named columns, in the
// order given.
func (t *Table) Select(labels ...string) (*Table, error) {
	out := New()
	for _, label := range labels {
		col, err := t.Column(label)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(label, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DropMissing returns a new table keeping only rows that have no missing
// value in any of the subset columns. An empty subset means all columns.
func (t *Table) DropMissing(subset ...string) (*Table, error) {
	if len(subset) == 0 {
		subset = t.labels
	}
	checked := make([][]float64, 0, len(subset))
	for _, label := range subset {
		col, err := t.Column(label)
		if err != nil {
			return nil, err
		}
		checked = append(checked, col)
	}

	keep := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		complete := true
		for _, col := range checked {
			if math.IsNaN(col[i]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	out := New()
	for _, label := range t.labels {
		src := t.columns[label]
		col := make([]float64, len(keep))
		for j, i := range keep {
			col[j] = src[i]
		}
		if err := out.AddColumn(label, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GroupBy partitions the rows by the distinct values of a column. Rows
// whose key is missing are excluded. Groups come back sorted by key so
// downstream aggregation is deterministic.
func (t *Table) GroupBy(label string) ([]Group, error) {
	keys, err := t.Column(label)
	if err != nil {
		return nil, err
	}
	byKey := make(map[float64][]int)
	for i, k := range keys {
		if math.IsNaN(k) {
			continue
		}
		byKey[k] = append(byKey[k], i)
	}
	groups := make([]Group, 0, len(byKey))
	for k, rows := range byKey {
		groups = append(groups, Group{Key: k, Rows: rows})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups, nil
}

// Values gathers the column values at the given row indices.
func (t *Table) Values(label string, rows []int) ([]float64, error) {
	col, err := t.Column(label)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for j, i := range rows {
		out[j] = col[i]
	}
	return out, nil
}
