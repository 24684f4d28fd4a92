package stats

import "gonum.org/v1/gonum/stat/distuv"

// ZVal returns the two-tailed Z-value for a confidence interval given
// as a number from 0 to 100 percent. The autoplay summary uses it to
// put error bars on mean scores.
func ZVal(confidenceInterval float64) float64 {
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	upperTail := (1 + confidenceInterval/100) / 2
	return normal.Quantile(upperTail)
}
