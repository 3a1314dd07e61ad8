// Package projection implements the linear dimensionality-reduction
// transform used by the factorial ANOVA engine: principal-component
// projection of the selected columns onto their leading components.
package projection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"goanova/domain/core"
	"goanova/domain/table"
)

// PCA projects columns onto their principal components. Implements
// ports.Projector.
type PCA struct{}

// NewPCA creates a principal-component projector.
func NewPCA() *PCA {
	return &PCA{}
}

// FitTransform fits a PCA to the selected columns and returns a table of
// nComponents factor columns labeled factor_1..factor_n, ordered by
// explained variance. The input columns are centered before projection.
// Fails when nComponents exceeds the column count (no silent truncation)
// and when any selected value is missing.
func (p *PCA) FitTransform(tbl *table.Table, columns []string, nComponents int) (*table.Table, error) {
	if nComponents < 1 {
		return nil, core.NewInvalidInputError("component count must be at least 1")
	}
	if nComponents > len(columns) {
		return nil, core.NewInvalidInputError(
			fmt.Sprintf("component count %d exceeds %d available columns", nComponents, len(columns)))
	}

	rows := tbl.NumRows()
	if rows <= 1 {
		return nil, core.NewInsufficientDataError("projection needs at least 2 rows")
	}

	data := mat.NewDense(rows, len(columns), nil)
	for j, label := range columns {
		col, err := tbl.Column(label)
		if err != nil {
			return nil, err
		}
		sum := 0.0
		for _, v := range col {
			if math.IsNaN(v) {
				return nil, core.NewInvalidInputError("column " + label + " has missing values")
			}
			sum += v
		}
		mean := sum / float64(rows)
		for i, v := range col {
			data.Set(i, j, v-mean)
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, core.NewInsufficientDataError("principal component decomposition failed")
	}
	var vectors mat.Dense
	pc.VectorsTo(&vectors)

	var projected mat.Dense
	projected.Mul(data, vectors.Slice(0, len(columns), 0, nComponents))

	out := table.New()
	for k := 0; k < nComponents; k++ {
		factor := make([]float64, rows)
		for i := range factor {
			factor[i] = projected.At(i, k)
		}
		if err := out.AddColumn(fmt.Sprintf("factor_%d", k+1), factor); err != nil {
			return nil, err
		}
	}
	return out, nil
}
