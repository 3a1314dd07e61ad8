package anova

import (
	"time"

	"goanova/domain/core"
)

// TestResult is one univariate ANOVA result row. FStatistic and PValue may
// be NaN or +Inf for degenerate variables (zero within-group variance);
// degeneracy deliberately surfaces in the values instead of failing the
// batch.
type TestResult struct {
	Variable            string  `json:"variable"`
	PValue              float64 `json:"p_value"`
	FStatistic          float64 `json:"f_statistic"`
	MeanVarianceBetween float64 `json:"mean_variance_between"`
	MeanVarianceWithin  float64 `json:"mean_variance_within"`
	NGroups             int     `json:"n_groups"`
	TotalN              int     `json:"total_n"`
	DFBetween           int     `json:"df_between"`
	DFWithin            int     `json:"df_within"`
}

// ManovaResult holds the three multivariate test statistics. No p-values
// are computed for these; callers needing significance must map them to
// F-approximations themselves.
type ManovaResult struct {
	Variables            []string `json:"variables"`
	WilksLambda          float64  `json:"wilks_lambda"`
	HotellingLawleyTrace float64  `json:"hotelling_lawley_trace"`
	PillaiBartlettTrace  float64  `json:"pillai_bartlett_trace"`
	NGroups              int      `json:"n_groups"`
	TotalN               int      `json:"total_n"`
}

// Run is the artifact of one analysis invocation: whichever of the three
// analyses were requested, plus enough context to reproduce them.
type Run struct {
	ID           core.RunID    `json:"id"`
	Dataset      string        `json:"dataset"`
	GroupColumn  string        `json:"group_column"`
	Univariate   []TestResult  `json:"univariate,omitempty"`
	Factorial    []TestResult  `json:"factorial,omitempty"`
	Multivariate *ManovaResult `json:"multivariate,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}
