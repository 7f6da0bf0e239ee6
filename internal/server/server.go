package server

import (
	"pairwatch/config"
	"pairwatch/internal/alert"
	"pairwatch/internal/market"
	"pairwatch/pkg/storage/postgres"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes the query surface over the bar store, the pair analytics
// engine and the alert tracker.
type Server struct {
	store     *postgres.PostgresClient
	tracker   *alert.Tracker
	timeframe market.Timeframe // default when a request omits it
	logger    *zap.Logger
}

func New(store *postgres.PostgresClient, tracker *alert.Tracker,
	timeframe market.Timeframe, logger *zap.Logger) *Server {
	return &Server{
		store:     store,
		tracker:   tracker,
		timeframe: timeframe,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/ohlc/:symbol", s.GetOHLC)
		api.POST("/analytics/zscore", s.PostZScore)
		api.POST("/analytics/adf", s.PostADF)
		api.GET("/alerts/live", s.GetLiveAlerts)
	}

	return r
}

// Run starts the HTTP server on the given address and blocks.
func (s *Server) Run(cfg config.ServerConfig) error {
	s.logger.Info("starting query API", zap.String("addr", cfg.Addr))
	return s.Router().Run(cfg.Addr)
}
