// Package engine implements the three variance-analysis engines: one-way
// ANOVA per dependent variable, factorial ANOVA over projected factors, and
// MANOVA over the joint dependent-variable space. Engines are stateless;
// each call clones its input table and is referentially transparent.
package engine

import (
	"fmt"

	"goanova/domain/anova"
	"goanova/domain/core"
	"goanova/domain/table"
	"goanova/internal/aggregate"
	"goanova/ports"
)

// UnivariateEngine computes one-way ANOVA rows, one per dependent variable.
type UnivariateEngine struct {
	fdist ports.FDist
}

// NewUnivariateEngine creates a univariate ANOVA engine over the given
// F-distribution.
func NewUnivariateEngine(fdist ports.FDist) *UnivariateEngine {
	return &UnivariateEngine{fdist: fdist}
}

// Anova computes a one-way ANOVA of the effect of groupColumn on each
// dependent variable. Variables are treated independently: each is filtered
// for missing values on its own, so different variables may use different
// row subsets. Structural problems (unknown columns, too few groups,
// non-positive degrees of freedom) abort with an error; numeric degeneracy
// (zero within-group variance) flows through as NaN or +Inf in the result
// row instead.
func (e *UnivariateEngine) Anova(tbl *table.Table, groupColumn string, dependent []string) ([]anova.TestResult, error) {
	work := tbl.Clone()
	columns, err := resolveDependent(work, groupColumn, dependent)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, core.NewInvalidInputError("no dependent variables to analyze")
	}

	results := make([]anova.TestResult, 0, len(columns))
	for _, depVariable := range columns {
		row, err := e.testVariable(work, groupColumn, depVariable)
		if err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, nil
}

func (e *UnivariateEngine) testVariable(tbl *table.Table, groupColumn, depVariable string) (anova.TestResult, error) {
	data, err := tbl.DropMissing(depVariable)
	if err != nil {
		return anova.TestResult{}, err
	}

	groups, err := aggregate.Groups(data, groupColumn, depVariable)
	if err != nil {
		return anova.TestResult{}, err
	}

	nGroups := len(groups)
	totalN := aggregate.TotalN(groups)
	df1 := nGroups - 1
	df2 := totalN - nGroups
	if df1 < 1 || df2 < 1 {
		return anova.TestResult{}, core.NewInsufficientDataError(
			fmt.Sprintf("degrees of freedom for %q: df1=%d df2=%d", depVariable, df1, df2))
	}

	weightedTotal := 0.0
	for _, g := range groups {
		weightedTotal += g.WeightedSum
	}
	grandMean := weightedTotal / float64(totalN)

	ssBetween := 0.0
	for _, g := range groups {
		dev := g.Mean - grandMean
		ssBetween += float64(g.Count) * dev * dev
	}

	// Within-group variance is reconstructed as df2 times the sum of group
	// variances rather than a residual sum of squares. Singleton groups
	// have undefined variance and contribute zero to the sum.
	ssWithin := float64(df2) * aggregate.VarianceSum(groups)

	msBetween := ssBetween / float64(df1)
	msWithin := ssWithin / float64(df2)

	// A zero msWithin yields +Inf (or NaN when msBetween is also zero);
	// both propagate into the result row unmasked.
	fStatistic := msBetween / msWithin
	pValue := e.fdist.Survival(fStatistic, float64(df1), float64(df2))

	return anova.TestResult{
		Variable:            depVariable,
		PValue:              pValue,
		FStatistic:          fStatistic,
		MeanVarianceBetween: msBetween,
		MeanVarianceWithin:  msWithin,
		NGroups:             nGroups,
		TotalN:              totalN,
		DFBetween:           df1,
		DFWithin:            df2,
	}, nil
}
