package binance

import (
	"encoding/json"
	"strconv"

	"pairwatch/internal/market"
)

// ParseKlineRows converts Binance REST kline rows to bars.
// Row layout: [openTime, open, high, low, close, volume, closeTime, ...]
// where openTime is a number and the prices/volume are strings.
// Invalid rows are skipped rather than failing the whole batch.
func ParseKlineRows(symbol string, tf market.Timeframe, rows [][]json.RawMessage) ([]market.Bar, error) {
	var out []market.Bar

	for _, row := range rows {
		if len(row) < 6 {
			continue // skip incomplete row
		}

		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			continue
		}

		open, ok := parsePriceField(row[1])
		if !ok {
			continue
		}
		high, ok := parsePriceField(row[2])
		if !ok {
			continue
		}
		low, ok := parsePriceField(row[3])
		if !ok {
			continue
		}
		closePrice, ok := parsePriceField(row[4])
		if !ok {
			continue
		}
		volume, ok := parsePriceField(row[5])
		if !ok {
			continue
		}

		out = append(out, market.Bar{
			Symbol:      symbol,
			Timeframe:   tf.Label,
			PeriodStart: openTime,
			Open:        open,
			High:        high,
			Low:         low,
			Close:       closePrice,
			Volume:      volume,
		})
	}
	return out, nil
}

// parsePriceField unwraps a JSON string field like "31400.50" into a float.
func parsePriceField(raw json.RawMessage) (float64, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
