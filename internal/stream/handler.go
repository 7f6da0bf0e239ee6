package stream

import (
	"context"
	"encoding/json"
	"strconv"

	"pairwatch/internal/ingest"
	"pairwatch/internal/market"
	"pairwatch/internal/metrics"
	"pairwatch/pkg/binance"

	"go.uber.org/zap"
)

// MakeMessageHandler returns a function that handles incoming WebSocket
// messages by parsing miniTicker batches and feeding them to the ingestor.
//
// The returned handler is invoked from the single feed-consumer goroutine,
// which keeps the ingestor's buffer state single-owner.
func MakeMessageHandler(logger *zap.Logger, ingestor *ingest.Ingestor) func(msg []byte) error {
	return func(msg []byte) error {
		// Step 1: cheap shape check. Data frames are JSON arrays,
		// subscription acks and other control frames are objects.
		if len(msg) == 0 || msg[0] != '[' {
			return nil
		}

		// Step 2: fully parse the miniTicker batch
		var tickers []binance.MiniTicker
		if err := json.Unmarshal(msg, &tickers); err != nil {
			logger.Warn("failed to parse miniTicker payload", zap.Error(err))
			return nil // malformed message: drop and continue
		}

		// Step 3: hand each tick to the ingestor
		ctx := context.Background()
		for _, ticker := range tickers {
			tick, ok := toTick(ticker)
			if !ok {
				metrics.TicksDropped.WithLabelValues("malformed").Inc()
				logger.Warn("dropping malformed tick",
					zap.String("symbol", ticker.Symbol),
					zap.String("price", ticker.Close),
					zap.String("size", ticker.Volume),
				)
				continue
			}

			if err := ingestor.OnTick(ctx, tick); err != nil {
				// Storage failure on a flush: surfaced so the feed loop
				// logs it and backs off, unlike per-tick drops.
				return err
			}
		}
		return nil
	}
}

// toTick converts a miniTicker entry into a domain tick.
// Unparsable price/size fields invalidate the tick.
func toTick(ticker binance.MiniTicker) (market.Tick, bool) {
	price, err := strconv.ParseFloat(ticker.Close, 64)
	if err != nil {
		return market.Tick{}, false
	}
	size, err := strconv.ParseFloat(ticker.Volume, 64)
	if err != nil {
		return market.Tick{}, false
	}

	return market.Tick{
		Symbol:    ticker.Symbol,
		EventTime: ticker.EventTime,
		Price:     price,
		Size:      size,
	}, true
}
