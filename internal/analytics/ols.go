package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// OLSBeta computes the hedge ratio: the slope of an ordinary least squares
// regression of y on x with an intercept term, fit over the whole series.
//
// A degenerate design (constant x, mismatched or empty inputs) yields 0.0
// rather than an error so analytics consumers always get a structurally
// valid response.
func OLSBeta(y, x []float64) float64 {
	if len(y) == 0 || len(y) != len(x) {
		return 0.0
	}

	_, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0.0
	}
	return beta
}
