package analytics

import (
	"math"
	"sort"

	"pairwatch/internal/market"

	"gonum.org/v1/gonum/stat"
)

// PairPoint is one period of pair analytics output.
// Beta is constant across a result set: it is fit once over the whole
// aligned series, not per bar.
type PairPoint struct {
	PeriodStart int64   `json:"period_start"`
	Spread      float64 `json:"spread"`
	ZScore      float64 `json:"z_score"`
	Beta        float64 `json:"beta"`
}

// AlignSpread inner-joins the two bar series on period start and returns the
// aligned periods, the spread y − beta·x at each period, and the hedge ratio.
// Periods present in only one series are dropped.
func AlignSpread(y, x []market.Bar) (periods []int64, spread []float64, beta float64) {
	if len(y) == 0 || len(x) == 0 {
		return nil, nil, 0.0
	}

	xClose := make(map[int64]float64, len(x))
	for _, bar := range x {
		xClose[bar.PeriodStart] = bar.Close
	}

	yClose := make(map[int64]float64, len(y))
	for _, bar := range y {
		if _, ok := xClose[bar.PeriodStart]; ok {
			yClose[bar.PeriodStart] = bar.Close
			periods = append(periods, bar.PeriodStart)
		}
	}
	if len(periods) == 0 {
		return nil, nil, 0.0
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i] < periods[j] })

	ys := make([]float64, len(periods))
	xs := make([]float64, len(periods))
	for i, period := range periods {
		ys[i] = yClose[period]
		xs[i] = xClose[period]
	}

	beta = OLSBeta(ys, xs)

	spread = make([]float64, len(periods))
	for i := range periods {
		spread[i] = ys[i] - beta*xs[i]
	}
	return periods, spread, beta
}

// ComputeZScore computes the rolling z-score of the pair spread.
//
// For each aligned period i the trailing `window` spread values ending at i
// (inclusive) give a sample mean and standard deviation; the z-score is the
// spread's deviation in those units. Periods with fewer than `window` values,
// or a zero rolling deviation, have no defined z-score and are excluded;
// every returned row is fully defined.
func ComputeZScore(y, x []market.Bar, window int) []PairPoint {
	periods, spread, beta := AlignSpread(y, x)
	if len(periods) == 0 || window < 1 {
		return nil
	}

	var out []PairPoint
	for i := range periods {
		if i < window-1 {
			continue // not enough trailing history yet
		}

		trailing := spread[i-window+1 : i+1]
		mean := stat.Mean(trailing, nil)
		std := stat.StdDev(trailing, nil)
		if std == 0 || math.IsNaN(std) {
			continue // flat window: a z-score here would manufacture a signal
		}

		z := (spread[i] - mean) / std
		if math.IsNaN(z) || math.IsInf(z, 0) || math.IsNaN(spread[i]) || math.IsInf(spread[i], 0) {
			continue
		}

		out = append(out, PairPoint{
			PeriodStart: periods[i],
			Spread:      spread[i],
			ZScore:      z,
			Beta:        beta,
		})
	}
	return out
}
