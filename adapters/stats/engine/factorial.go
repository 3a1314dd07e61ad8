package engine

import (
	"goanova/domain/anova"
	"goanova/domain/core"
	"goanova/domain/table"
	"goanova/ports"
)

// DefaultFactors is the number of projected factors used when the caller
// does not specify one.
const DefaultFactors = 3

// FactorialEngine reduces the dependent variables to a small set of
// orthogonal factors through a linear projection, then runs a one-way ANOVA
// on each factor.
type FactorialEngine struct {
	univariate *UnivariateEngine
	projector  ports.Projector
}

// NewFactorialEngine creates a factorial ANOVA engine delegating to the
// given univariate engine and projection transform.
func NewFactorialEngine(univariate *UnivariateEngine, projector ports.Projector) *FactorialEngine {
	return &FactorialEngine{univariate: univariate, projector: projector}
}

// FactorialAnova projects the dependent columns down to nFactors orthogonal
// factor columns, reattaches the grouping column and delegates to the
// univariate engine with the factor labels as variable names. nFactors <= 0
// selects DefaultFactors. Rows are not filtered for missingness before the
// projection; the transform rejects missing values, so callers must supply
// complete rows for the selected columns.
func (e *FactorialEngine) FactorialAnova(tbl *table.Table, groupColumn string, dependent []string, nFactors int) ([]anova.TestResult, error) {
	if nFactors <= 0 {
		nFactors = DefaultFactors
	}
	work := tbl.Clone()
	columns, err := resolveDependent(work, groupColumn, dependent)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, core.NewInvalidInputError("no dependent variables to project")
	}

	factors, err := e.projector.FitTransform(work, columns, nFactors)
	if err != nil {
		return nil, err
	}

	groupValues, err := work.Column(groupColumn)
	if err != nil {
		return nil, err
	}
	factorLabels := factors.Columns()
	if err := factors.AddColumn(groupColumn, groupValues); err != nil {
		return nil, err
	}

	return e.univariate.Anova(factors, groupColumn, factorLabels)
}
