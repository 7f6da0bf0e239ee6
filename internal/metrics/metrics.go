package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairwatch_ticks_total", Help: "Count of market ticks ingested"},
		[]string{"symbol"},
	)
	TicksDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairwatch_ticks_dropped_total", Help: "Ticks discarded (unmonitored symbol or malformed payload)"},
		[]string{"reason"},
	)
	BarsStored = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairwatch_bars_stored_total", Help: "OHLCV bars upserted into the store"},
		[]string{"symbol"},
	)
	WSReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "pairwatch_ws_reconnects_total", Help: "WebSocket reconnect attempts"},
	)
	AnalyticsQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairwatch_analytics_queries_total", Help: "Pair analytics queries served"},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, TicksDropped, BarsStored, WSReconnects, AnalyticsQueries)
}
