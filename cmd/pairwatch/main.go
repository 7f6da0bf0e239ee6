package main

import (
	"pairwatch/config"
	"pairwatch/internal/alert"
	"pairwatch/internal/collector"
	"pairwatch/internal/market"
	"pairwatch/internal/server"
	"pairwatch/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	// run ingestion pipeline
	store, err := collector.StartCollector(cfg, log)
	if err != nil {
		log.Fatal("collector failed", zap.Error(err))
	}

	// serve analytics queries
	timeframe, err := market.ParseTimeframe(cfg.Monitor.Timeframe)
	if err != nil {
		log.Fatal("invalid timeframe", zap.Error(err))
	}
	tracker := alert.NewTracker(cfg.Analytics.AlertZScore)

	srv := server.New(store, tracker, timeframe, log)
	if err := srv.Run(cfg.Server); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
