package backfill

import (
	"context"
	"time"

	"pairwatch/config"
	"pairwatch/internal/market"
	"pairwatch/internal/metrics"
	"pairwatch/pkg/binance"
	"pairwatch/pkg/storage/postgres"

	"go.uber.org/zap"
)

// Loader fills the bar store with recent exchange history so analytics
// windows have data before the live feed alone could provide it.
type Loader struct {
	Cfg        *config.Config
	Timeframe  market.Timeframe
	RestClient *binance.RESTClient
	Store      *postgres.PostgresClient
	Logger     *zap.Logger
}

// LoadSymbols fetches the configured lookback of klines for every monitored
// symbol and upserts them. Per-symbol failures are logged and skipped; the
// pipeline must come up even when the REST API is flaky.
func (l *Loader) LoadSymbols(ctx context.Context) {
	lookback := l.Cfg.Monitor.Backfill
	if lookback <= 0 {
		lookback = 4 * time.Hour
	}
	end := time.Now()
	start := end.Add(-lookback)

	for _, symbol := range l.Cfg.Monitor.Symbols {
		if err := l.loadSymbol(ctx, symbol, start, end); err != nil {
			l.Logger.Warn("backfill failed for symbol", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		l.Logger.Info("backfill completed for symbol", zap.String("symbol", symbol))
	}
}

func (l *Loader) loadSymbol(ctx context.Context, symbol string, start, end time.Time) error {
	reqCtx, cancel := context.WithTimeout(ctx, l.Cfg.Binance.REST.Timeout)
	bars, err := l.RestClient.GetKlines(reqCtx, symbol, l.Timeframe, start, end)
	cancel()
	if err != nil {
		return err
	}

	for _, bar := range bars {
		dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := l.Store.UpsertBar(dbCtx, bar)
		cancel()
		if err != nil {
			return err
		}
		metrics.BarsStored.WithLabelValues(symbol).Inc()
	}
	return nil
}
