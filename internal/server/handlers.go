package server

import (
	"net/http"
	"strings"
	"time"

	"pairwatch/internal/alert"
	"pairwatch/internal/analytics"
	"pairwatch/internal/market"
	"pairwatch/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultBarLimit caps how much history a single query reads.
const defaultBarLimit = 500

// Health reports service liveness and store reachability.
func (s *Server) Health(c *gin.Context) {
	status := "ok"
	if !s.store.IsHealthy(c.Request.Context()) {
		status = "degraded"
	}
	c.JSON(http.StatusOK, HealthResponse{Status: status, Service: "pairwatch"})
}

// GetOHLC returns stored bars for a symbol, ascending by period.
// No history yet is an empty array, not an error.
func (s *Server) GetOHLC(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	bars, err := s.store.ReadBars(c.Request.Context(), symbol, s.timeframe.Label, defaultBarLimit)
	if err != nil {
		s.logger.Error("failed to read bars", zap.String("symbol", symbol), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage read failed"})
		return
	}

	rows := make([]OHLCRow, len(bars))
	for i, bar := range bars {
		rows[i] = OHLCRow{
			Timestamp: bar.Period(),
			Symbol:    bar.Symbol,
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			Volume:    bar.Volume,
		}
	}
	c.JSON(http.StatusOK, rows)
}

// PostZScore computes hedge ratio, spread and rolling z-score for a pair and
// records the latest observation in the alert tracker.
func (s *Server) PostZScore(c *gin.Context) {
	metrics.AnalyticsQueries.WithLabelValues("zscore").Inc()

	params, tf, ok := s.bindPairParams(c)
	if !ok {
		return
	}

	yBars, xBars, ok := s.readPair(c, params, tf)
	if !ok {
		return
	}

	// Not enough history yet: an empty result, not a failure.
	points := analytics.ComputeZScore(yBars, xBars, params.Window)
	rows := make([]ZScoreRow, len(points))
	for i, p := range points {
		rows[i] = ZScoreRow{
			Timestamp: time.UnixMilli(p.PeriodStart).UTC(),
			Spread:    p.Spread,
			ZScore:    p.ZScore,
			Beta:      p.Beta,
		}
	}

	if len(points) > 0 {
		last := points[len(points)-1]
		s.tracker.Record(params.SymbolY, params.SymbolX, alert.MetricZScore, last.ZScore)
		s.tracker.Record(params.SymbolY, params.SymbolX, alert.MetricBeta, last.Beta)
	}

	c.JSON(http.StatusOK, rows)
}

// PostADF runs the augmented Dickey-Fuller test on the pair spread.
func (s *Server) PostADF(c *gin.Context) {
	metrics.AnalyticsQueries.WithLabelValues("adf").Inc()

	params, tf, ok := s.bindPairParams(c)
	if !ok {
		return
	}

	yBars, xBars, ok := s.readPair(c, params, tf)
	if !ok {
		return
	}
	if len(yBars) == 0 || len(xBars) == 0 {
		c.JSON(http.StatusOK, ADFResponse{Status: "Data insufficient for ADF test.", Verdict: analytics.VerdictInsufficient})
		return
	}

	_, spread, _ := analytics.AlignSpread(yBars, xBars)
	result := analytics.ADFTest(spread)
	if result.Verdict == analytics.VerdictInsufficient {
		c.JSON(http.StatusOK, ADFResponse{Status: "Data insufficient for ADF test.", Verdict: result.Verdict})
		return
	}

	c.JSON(http.StatusOK, ADFResponse{
		Status:         "ADF test results available.",
		TestStatistic:  result.TestStatistic,
		PValue:         result.PValue,
		UsedLag:        result.UsedLag,
		NObs:           result.NObs,
		CriticalValues: result.CriticalValues,
		Verdict:        result.Verdict,
	})
}

// GetLiveAlerts returns the currently triggered alert set.
func (s *Server) GetLiveAlerts(c *gin.Context) {
	alerts := s.tracker.CurrentAlerts()
	if alerts == nil {
		alerts = []string{}
	}
	c.JSON(http.StatusOK, alerts)
}

func (s *Server) bindPairParams(c *gin.Context) (PairParams, market.Timeframe, bool) {
	var params PairParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return params, market.Timeframe{}, false
	}
	params.SymbolY = strings.ToUpper(params.SymbolY)
	params.SymbolX = strings.ToUpper(params.SymbolX)

	tf := s.timeframe
	if params.Timeframe != "" {
		parsed, err := market.ParseTimeframe(params.Timeframe)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return params, market.Timeframe{}, false
		}
		tf = parsed
	}
	return params, tf, true
}

func (s *Server) readPair(c *gin.Context, params PairParams, tf market.Timeframe) ([]market.Bar, []market.Bar, bool) {
	ctx := c.Request.Context()

	yBars, err := s.store.ReadBars(ctx, params.SymbolY, tf.Label, defaultBarLimit)
	if err != nil {
		s.logger.Error("failed to read bars", zap.String("symbol", params.SymbolY), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage read failed"})
		return nil, nil, false
	}
	xBars, err := s.store.ReadBars(ctx, params.SymbolX, tf.Label, defaultBarLimit)
	if err != nil {
		s.logger.Error("failed to read bars", zap.String("symbol", params.SymbolX), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage read failed"})
		return nil, nil, false
	}
	return yBars, xBars, true
}
