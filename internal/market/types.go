package market

import "time"

// Tick is a single price/size observation for a symbol.
// Ticks are transient: they live in the ingest buffer until a flush and are never persisted.
type Tick struct {
	Symbol    string  `json:"symbol"` // normalized uppercase, e.g. "BTCUSDT"
	EventTime int64   `json:"time"`   // producer-assigned event time (milliseconds since epoch)
	Price     float64 `json:"price"`  // last price
	Size      float64 `json:"size"`   // rolling volume as reported by the feed
}

// Bar is one OHLCV candle for (Symbol, Timeframe, PeriodStart).
type Bar struct {
	Symbol      string  `json:"symbol"`
	Timeframe   string  `json:"timeframe"`    // canonical duration string, e.g. "1s", "1m"
	PeriodStart int64   `json:"period_start"` // floored to the timeframe boundary (milliseconds since epoch)
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"` // sum of constituent tick sizes
}

// Period returns the bar's period start as a time.Time in UTC.
func (b Bar) Period() time.Time {
	return time.UnixMilli(b.PeriodStart).UTC()
}
