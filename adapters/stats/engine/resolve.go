package engine

import (
	"goanova/domain/core"
	"goanova/domain/table"
)

// resolveDependent validates the grouping column and materializes the
// dependent-variable list. An omitted or empty list defaults to every
// column of the table except the grouping column.
func resolveDependent(tbl *table.Table, groupColumn string, dependent []string) ([]string, error) {
	if !tbl.HasColumn(groupColumn) {
		return nil, core.NewColumnNotFoundError(groupColumn)
	}
	if len(dependent) == 0 {
		for _, label := range tbl.Columns() {
			if label != groupColumn {
				dependent = append(dependent, label)
			}
		}
		return dependent, nil
	}
	out := make([]string, 0, len(dependent))
	for _, label := range dependent {
		if !tbl.HasColumn(label) {
			return nil, core.NewColumnNotFoundError(label)
		}
		if label == groupColumn {
			return nil, core.NewInvalidInputError("grouping column " + label + " cannot be a dependent variable")
		}
		out = append(out, label)
	}
	return out, nil
}
