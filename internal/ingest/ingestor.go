package ingest

import (
	"context"
	"fmt"
	"strings"

	"pairwatch/internal/market"
	"pairwatch/internal/metrics"
	"pairwatch/internal/resample"

	"go.uber.org/zap"
)

// BarSink persists completed bars. Satisfied by the postgres client.
type BarSink interface {
	UpsertBar(ctx context.Context, bar market.Bar) error
}

// Ingestor buffers raw ticks per monitored symbol and flushes a symbol's
// buffer through the resampler into the sink once it reaches the threshold.
//
// The ingestor is owned by the feed-consumer goroutine: OnTick and Flush are
// only called from that one goroutine, so the buffer map needs no locking.
type Ingestor struct {
	monitored map[string]bool
	timeframe market.Timeframe
	threshold int
	sink      BarSink
	logger    *zap.Logger

	buffers map[string][]market.Tick
}

// New creates an ingestor for the given monitored symbol set.
// Symbols are matched case-insensitively; buffers flush at threshold ticks.
func New(symbols []string, tf market.Timeframe, threshold int, sink BarSink, logger *zap.Logger) *Ingestor {
	monitored := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		monitored[strings.ToUpper(symbol)] = true
	}

	return &Ingestor{
		monitored: monitored,
		timeframe: tf,
		threshold: threshold,
		sink:      sink,
		logger:    logger,
		buffers:   make(map[string][]market.Tick),
	}
}

// OnTick appends the tick to its symbol's buffer and flushes the buffer if it
// has reached the threshold. Ticks for unmonitored symbols are discarded
// silently. A returned error is a storage failure from the flush; dropped
// ticks never produce one.
func (in *Ingestor) OnTick(ctx context.Context, tick market.Tick) error {
	symbol := strings.ToUpper(tick.Symbol)
	if !in.monitored[symbol] {
		metrics.TicksDropped.WithLabelValues("unmonitored").Inc()
		return nil
	}
	tick.Symbol = symbol

	in.buffers[symbol] = append(in.buffers[symbol], tick)
	metrics.TicksTotal.WithLabelValues(symbol).Inc()

	if len(in.buffers[symbol]) >= in.threshold {
		return in.Flush(ctx, symbol)
	}
	return nil
}

// Flush resamples and persists the symbol's buffered ticks, then clears the
// buffer. On a store failure the buffer is kept, so the next tick retries the
// whole flush; bars persisted before the failure are simply upserted again.
func (in *Ingestor) Flush(ctx context.Context, symbol string) error {
	ticks := in.buffers[symbol]
	if len(ticks) == 0 {
		return nil
	}

	bars := resample.Resample(ticks, symbol, in.timeframe)
	for _, bar := range bars {
		if err := in.sink.UpsertBar(ctx, bar); err != nil {
			return fmt.Errorf("store bar %s %s: %w", symbol, bar.Period().Format("15:04:05"), err)
		}
		metrics.BarsStored.WithLabelValues(symbol).Inc()
	}
	delete(in.buffers, symbol)

	in.logger.Debug("flushed tick buffer",
		zap.String("symbol", symbol),
		zap.Int("ticks", len(ticks)),
		zap.Int("bars", len(bars)),
	)
	return nil
}

// Buffered returns the number of ticks currently buffered for a symbol.
func (in *Ingestor) Buffered(symbol string) int {
	return len(in.buffers[strings.ToUpper(symbol)])
}
