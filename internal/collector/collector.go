package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pairwatch/config"
	"pairwatch/internal/backfill"
	"pairwatch/internal/ingest"
	"pairwatch/internal/market"
	"pairwatch/internal/stream"
	"pairwatch/pkg/binance"
	"pairwatch/pkg/storage/postgres"

	"go.uber.org/zap"
)

// StartCollector initializes the ingestion pipeline: it connects the bar
// store, backfills recent history over REST, and starts the live tick feed
// whose flushes resample into the store. It returns the store for the
// serving side to read from.
func StartCollector(cfg *config.Config, logger *zap.Logger) (*postgres.PostgresClient, error) {
	timeframe, err := market.ParseTimeframe(cfg.Monitor.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("invalid monitor timeframe: %w", err)
	}
	if len(cfg.Monitor.Symbols) == 0 {
		return nil, fmt.Errorf("no monitored symbols configured")
	}
	for i, symbol := range cfg.Monitor.Symbols {
		cfg.Monitor.Symbols[i] = strings.ToUpper(symbol)
	}

	// Initialize PostgreSQL client
	postgresClient, err := postgres.InitializeAndMigrateBarRecord(cfg.Postgres, cfg.Log.Environment, true)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	// Backfill recent history now and again every 24h
	restClient := binance.NewRESTClient(cfg.Binance.REST.BaseURL, cfg.Binance.REST.Timeout)
	loader := &backfill.Loader{
		Cfg:        cfg,
		Timeframe:  timeframe,
		RestClient: restClient,
		Store:      postgresClient,
		Logger:     logger,
	}
	scheduler := &backfill.Scheduler{Load: loader.LoadSymbols}
	scheduler.Start(context.Background())

	// The ingestor is owned by the feed-consumer goroutine started below.
	ingestor := ingest.New(cfg.Monitor.Symbols, timeframe, cfg.Monitor.FlushThreshold, postgresClient, logger)

	// Initialize WebSocket client on the miniTicker batch stream
	wsClient := binance.NewWSClient(cfg.Binance.WS.URL, []string{"!miniTicker@arr"}, logger)
	wsClient.SetMessageHandler(stream.MakeMessageHandler(logger, ingestor))

	// Periodically log stored bar counts for visibility
	go func() {
		for {
			time.Sleep(30 * time.Second)
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			for _, symbol := range cfg.Monitor.Symbols {
				count, err := postgresClient.CountBars(ctx, symbol, timeframe.Label)
				if err != nil {
					continue
				}
				logger.Info("current stored bars", zap.String("symbol", symbol), zap.Int64("count", count))
			}
			cancel()
		}
	}()

	// Connect to the feed and start the listener
	if err := wsClient.Connect(); err != nil {
		return nil, err
	}
	go wsClient.Listen() // explicitly start listener

	return postgresClient, nil
}
