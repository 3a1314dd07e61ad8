package ports

// FDist exposes the F-distribution's survival function (upper-tail
// probability). Survival must return 0 for x = +Inf and propagate NaN
// unmasked.
type FDist interface {
	Survival(x, df1, df2 float64) float64
}
