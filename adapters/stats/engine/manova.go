package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"goanova/domain/anova"
	"goanova/domain/core"
	"goanova/domain/table"
	"goanova/internal/aggregate"
	"goanova/internal/matrixops"
)

// LambdaMode selects the Wilks' Lambda definition.
type LambdaMode int

const (
	// LambdaDeterminantRatio is det(error)/det(total), the statistically
	// standard definition. Default.
	LambdaDeterminantRatio LambdaMode = iota
	// LambdaNormRatio is the Frobenius-norm ratio
	// norm(error)/norm(total), kept for compatibility with historical
	// output that used it in place of the determinant ratio.
	LambdaNormRatio
)

// ManovaEngine computes the multivariate analysis of variance: total,
// hypothesis and error scatter matrices over the dependent-variable space
// and the three derived test statistics.
type ManovaEngine struct {
	// LambdaMode selects the Wilks' Lambda formula; the zero value is the
	// determinant ratio.
	LambdaMode LambdaMode
}

// NewManovaEngine creates a MANOVA engine with the standard
// determinant-ratio Wilks' Lambda.
func NewManovaEngine() *ManovaEngine {
	return &ManovaEngine{}
}

// Manova computes the hypothesis and error variance-covariance matrices for
// the dependent variables and the Wilks' Lambda, Hotelling-Lawley trace and
// Pillai-Bartlett trace statistics. Rows with a missing value in any
// dependent column are dropped jointly, unlike the per-variable filtering
// of the univariate engine, so every variable shares one row subset and per
// group counts agree across variables by construction. Singular error or
// total matrices are tolerated: inversions go through the pseudo-inverse
// and a zero determinant simply surfaces in the Lambda value.
func (e *ManovaEngine) Manova(tbl *table.Table, groupColumn string, dependent []string) (*anova.ManovaResult, error) {
	work := tbl.Clone()
	columns, err := resolveDependent(work, groupColumn, dependent)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, core.NewInvalidInputError("no dependent variables to analyze")
	}

	// The grouping column joins the filter so the scatter matrices and the
	// group aggregation see exactly the same rows.
	data, err := work.DropMissing(append(append([]string{}, columns...), groupColumn)...)
	if err != nil {
		return nil, err
	}

	// Aggregate every dependent variable over the jointly filtered rows.
	// The first variable supplies the group counts; the alignment check
	// below turns the shared-count invariant into a hard failure instead
	// of silent misalignment.
	perVariable := make([][]aggregate.GroupStats, len(columns))
	for i, depVariable := range columns {
		groups, err := aggregate.Groups(data, groupColumn, depVariable)
		if err != nil {
			return nil, err
		}
		perVariable[i] = groups
	}
	if err := checkGroupAlignment(columns, perVariable); err != nil {
		return nil, err
	}

	nVector := perVariable[0]
	nGroups := len(nVector)
	totalN := aggregate.TotalN(nVector)
	if nGroups < 2 {
		return nil, core.NewInsufficientDataError(fmt.Sprintf("%d group(s), need at least 2", nGroups))
	}

	grandMean := make([]float64, len(columns))
	for i, groups := range perVariable {
		sum := 0.0
		for _, g := range groups {
			sum += g.WeightedSum
		}
		grandMean[i] = sum / float64(totalN)
	}

	totalVariance, err := totalScatter(data, columns, totalN)
	if err != nil {
		return nil, err
	}

	// Between-group scatter: sum over groups of
	// n_g * (mean_g - grand)(mean_g - grand)^T.
	hypothesisVariance := matrixops.NewZero(columns)
	for g := 0; g < nGroups; g++ {
		weight := float64(nVector[g].Count)
		for i := range columns {
			devI := perVariable[i][g].Mean - grandMean[i]
			for j := range columns {
				devJ := perVariable[j][g].Mean - grandMean[j]
				hypothesisVariance.Set(i, j, hypothesisVariance.At(i, j)+weight*devI*devJ)
			}
		}
	}

	errorVariance, err := matrixops.Sub(totalVariance, hypothesisVariance)
	if err != nil {
		return nil, err
	}

	wilks, err := e.wilksLambda(errorVariance, totalVariance)
	if err != nil {
		return nil, err
	}

	errorInv, err := matrixops.PseudoInverse(errorVariance)
	if err != nil {
		return nil, err
	}
	hotellingProduct, err := matrixops.Mul(hypothesisVariance, errorInv)
	if err != nil {
		return nil, err
	}

	sum, err := matrixops.Add(hypothesisVariance, errorVariance)
	if err != nil {
		return nil, err
	}
	sumInv, err := matrixops.PseudoInverse(sum)
	if err != nil {
		return nil, err
	}
	pillaiProduct, err := matrixops.Mul(hypothesisVariance, sumInv)
	if err != nil {
		return nil, err
	}

	return &anova.ManovaResult{
		Variables:            columns,
		WilksLambda:          wilks,
		HotellingLawleyTrace: matrixops.Trace(hotellingProduct),
		PillaiBartlettTrace:  matrixops.Trace(pillaiProduct),
		NGroups:              nGroups,
		TotalN:               totalN,
	}, nil
}

func (e *ManovaEngine) wilksLambda(errorVariance, totalVariance *matrixops.Matrix) (float64, error) {
	switch e.LambdaMode {
	case LambdaDeterminantRatio:
		return matrixops.Det(errorVariance) / matrixops.Det(totalVariance), nil
	case LambdaNormRatio:
		return matrixops.FrobeniusNorm(errorVariance) / matrixops.FrobeniusNorm(totalVariance), nil
	default:
		return math.NaN(), fmt.Errorf("unknown lambda mode %d", e.LambdaMode)
	}
}

// totalScatter is the sample covariance matrix of the filtered rows scaled
// by (n - 1), labeled with the dependent columns.
func totalScatter(data *table.Table, columns []string, totalN int) (*matrixops.Matrix, error) {
	rows := data.NumRows()
	m := mat.NewDense(rows, len(columns), nil)
	for j, label := range columns {
		col, err := data.Column(label)
		if err != nil {
			return nil, err
		}
		for i, v := range col {
			m.Set(i, j, v)
		}
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, m, nil)

	scale := float64(totalN - 1)
	n := len(columns)
	scaled := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			scaled.Set(i, j, cov.At(i, j)*scale)
		}
	}
	return matrixops.New(columns, scaled)
}

// checkGroupAlignment enforces the shared-count invariant: after joint
// filtering every dependent variable must see the same group keys with the
// same counts, in the same order.
func checkGroupAlignment(columns []string, perVariable [][]aggregate.GroupStats) error {
	reference := perVariable[0]
	for i, groups := range perVariable[1:] {
		if len(groups) != len(reference) {
			return core.NewInvalidInputError(
				fmt.Sprintf("group count mismatch between %q and %q", columns[0], columns[i+1]))
		}
		for g := range groups {
			if groups[g].Key != reference[g].Key || groups[g].Count != reference[g].Count {
				return core.NewInvalidInputError(
					fmt.Sprintf("group alignment mismatch between %q and %q at key %v",
						columns[0], columns[i+1], groups[g].Key))
			}
		}
	}
	return nil
}
