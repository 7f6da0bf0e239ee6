package market

import (
	"fmt"
	"time"
)

// Timeframe is the fixed bucket width used to aggregate ticks into bars.
// Label doubles as the DB value and the exchange REST interval token.
type Timeframe struct {
	Label    string
	Duration time.Duration
}

// validTimeframes maps interval labels to their metadata.
var validTimeframes = map[string]Timeframe{
	"1s":  {Label: "1s", Duration: time.Second},
	"1m":  {Label: "1m", Duration: time.Minute},
	"3m":  {Label: "3m", Duration: 3 * time.Minute},
	"5m":  {Label: "5m", Duration: 5 * time.Minute},
	"15m": {Label: "15m", Duration: 15 * time.Minute},
	"30m": {Label: "30m", Duration: 30 * time.Minute},
	"1h":  {Label: "1h", Duration: time.Hour},
	"4h":  {Label: "4h", Duration: 4 * time.Hour},
	"1d":  {Label: "1d", Duration: 24 * time.Hour},
}

// ParseTimeframe parses a label like "1s" or "5m" into a valid Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	tf, ok := validTimeframes[s]
	if !ok {
		return Timeframe{}, fmt.Errorf("invalid timeframe: %s", s)
	}
	return tf, nil
}

// Millis returns the bucket width in milliseconds.
func (tf Timeframe) Millis() int64 {
	return tf.Duration.Milliseconds()
}

// FloorMillis floors an epoch-millisecond timestamp to the timeframe boundary.
func (tf Timeframe) FloorMillis(ms int64) int64 {
	width := tf.Millis()
	return (ms / width) * width
}
