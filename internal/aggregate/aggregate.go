// Package aggregate computes per-group descriptive statistics for one
// dependent variable of a table: count, mean, sample variance and weighted
// sum. These tuples are the raw material for the ANOVA and MANOVA engines.
package aggregate

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"goanova/domain/core"
	"goanova/domain/table"
)

// GroupStats holds the per-group statistics for one dependent variable.
// Variance is the sample variance (denominator count-1) and is NaN for
// singleton groups, where it is undefined. Singleton variances are skipped
// when within-group sums are formed, so a singleton group contributes zero
// within-group variance while still participating in counts and means.
type GroupStats struct {
	Key         float64
	Count       int
	Mean        float64
	Variance    float64
	WeightedSum float64
}

// Groups aggregates depColumn by the levels of groupColumn. Rows with a
// missing dependent value are ignored; rows with a missing group key never
// form a group. Fails when fewer than 2 usable groups remain, since the
// between-group degrees of freedom would be non-positive.
func Groups(tbl *table.Table, groupColumn, depColumn string) ([]GroupStats, error) {
	groups, err := tbl.GroupBy(groupColumn)
	if err != nil {
		return nil, err
	}

	out := make([]GroupStats, 0, len(groups))
	for _, g := range groups {
		values, err := tbl.Values(depColumn, g.Rows)
		if err != nil {
			return nil, err
		}
		present := values[:0:0]
		for _, v := range values {
			if !math.IsNaN(v) {
				present = append(present, v)
			}
		}
		if len(present) == 0 {
			continue
		}

		mean, err := stats.Mean(present)
		if err != nil {
			return nil, fmt.Errorf("aggregating %s: %w", depColumn, err)
		}
		variance := math.NaN()
		if len(present) > 1 {
			variance, err = stats.SampleVariance(present)
			if err != nil {
				return nil, fmt.Errorf("aggregating %s: %w", depColumn, err)
			}
		}

		out = append(out, GroupStats{
			Key:         g.Key,
			Count:       len(present),
			Mean:        mean,
			Variance:    variance,
			WeightedSum: mean * float64(len(present)),
		})
	}

	if len(out) < 2 {
		return nil, core.NewInsufficientDataError(
			fmt.Sprintf("%d group(s) for %q after filtering, need at least 2", len(out), depColumn))
	}
	return out, nil
}

// TotalN sums the per-group counts.
func TotalN(groups []GroupStats) int {
	n := 0
	for _, g := range groups {
		n += g.Count
	}
	return n
}

// VarianceSum adds up the defined group variances. Singleton groups carry
// an undefined (NaN) variance and contribute zero.
func VarianceSum(groups []GroupStats) float64 {
	sum := 0.0
	for _, g := range groups {
		if !math.IsNaN(g.Variance) {
			sum += g.Variance
		}
	}
	return sum
}
