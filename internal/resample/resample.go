package resample

import (
	"sort"

	"pairwatch/internal/market"
)

// Resample partitions raw ticks into timeframe buckets and reduces each
// non-empty bucket to one OHLCV bar. Buckets with no ticks are omitted
// (no forward-filled gaps). Output is ascending by period start.
//
// The result is independent of input order: bucket membership depends only on
// the event time, and each bucket is time-sorted before taking open/close.
func Resample(ticks []market.Tick, symbol string, tf market.Timeframe) []market.Bar {
	if len(ticks) == 0 || tf.Duration <= 0 {
		return nil
	}

	buckets := make(map[int64][]market.Tick)
	for _, tick := range ticks {
		period := tf.FloorMillis(tick.EventTime)
		buckets[period] = append(buckets[period], tick)
	}

	periods := make([]int64, 0, len(buckets))
	for period := range buckets {
		periods = append(periods, period)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i] < periods[j] })

	bars := make([]market.Bar, 0, len(periods))
	for _, period := range periods {
		bucket := buckets[period]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].EventTime < bucket[j].EventTime
		})

		bar := market.Bar{
			Symbol:      symbol,
			Timeframe:   tf.Label,
			PeriodStart: period,
			Open:        bucket[0].Price,
			High:        bucket[0].Price,
			Low:         bucket[0].Price,
			Close:       bucket[len(bucket)-1].Price,
		}
		for _, tick := range bucket {
			if tick.Price > bar.High {
				bar.High = tick.Price
			}
			if tick.Price < bar.Low {
				bar.Low = tick.Price
			}
			bar.Volume += tick.Size
		}
		bars = append(bars, bar)
	}

	return bars
}
