package server

import "time"

// PairParams selects the pair and window for an analytics query.
type PairParams struct {
	SymbolY   string `json:"symbol_y" binding:"required"`
	SymbolX   string `json:"symbol_x" binding:"required"`
	Timeframe string `json:"timeframe"`
	Window    int    `json:"window" binding:"required,min=1"`
}

// OHLCRow is one stored bar in an /ohlc response.
type OHLCRow struct {
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// ZScoreRow is one period of a pair analytics response.
type ZScoreRow struct {
	Timestamp time.Time `json:"timestamp"`
	Spread    float64   `json:"spread"`
	ZScore    float64   `json:"z_score"`
	Beta      float64   `json:"beta"`
}

// ADFResponse reports a stationarity test run.
type ADFResponse struct {
	Status         string             `json:"status"`
	TestStatistic  float64            `json:"test_statistic"`
	PValue         float64            `json:"p_value"`
	UsedLag        int                `json:"lags_used"`
	NObs           int                `json:"n_observations"`
	CriticalValues map[string]float64 `json:"critical_values"`
	Verdict        string             `json:"verdict"`
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
