// Package gonumdist adapts gonum's distribution functions to the ports the
// engines consume.
package gonumdist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// F exposes the F-distribution survival function. Implements ports.FDist.
type F struct{}

// NewF creates the F-distribution adapter.
func NewF() *F {
	return &F{}
}

// Survival returns the upper-tail probability of the F-distribution with
// (df1, df2) degrees of freedom at x. An infinite statistic has survival 0
// and NaN propagates unmasked, so degenerate F values stay visible in the
// result rows.
func (F) Survival(x, df1, df2 float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if math.IsInf(x, 1) {
		return 0
	}
	if x <= 0 {
		return 1
	}
	dist := distuv.F{D1: df1, D2: df2}
	return dist.Survival(x)
}
