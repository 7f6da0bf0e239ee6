package server

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pairwatch/internal/alert"
	"pairwatch/internal/market"
	"pairwatch/pkg/storage/postgres"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) (*Server, *postgres.PostgresClient) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	store := &postgres.PostgresClient{DB: db}
	if err := store.AutoMigrateBarRecord(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	tf, err := market.ParseTimeframe("1s")
	if err != nil {
		t.Fatalf("parse timeframe: %v", err)
	}

	return New(store, alert.NewTracker(2.0), tf, zap.NewNop()), store
}

func seedPair(t *testing.T, store *postgres.PostgresClient, n int) {
	t.Helper()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		period := int64(i+1) * 1000
		// y tracks x with noise so the spread is neither flat nor exact
		xClose := 50 + float64(i)/2
		yClose := 2*xClose + rng.NormFloat64()*0.5

		for _, bar := range []market.Bar{
			{Symbol: "BTCUSDT", Timeframe: "1s", PeriodStart: period, Open: yClose, High: yClose, Low: yClose, Close: yClose, Volume: 1},
			{Symbol: "ETHUSDT", Timeframe: "1s", PeriodStart: period, Open: xClose, High: xClose, Low: xClose, Close: xClose, Volume: 1},
		} {
			if err := store.UpsertBar(ctx, bar); err != nil {
				t.Fatalf("seed upsert failed: %v", err)
			}
		}
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// go test -v --run TestGetOHLCEmpty
func TestGetOHLCEmpty(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/ohlc/btcusdt", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty history, got %d", w.Code)
	}
	var rows []OHLCRow
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty array, got %d rows", len(rows))
	}
}

// go test -v --run TestGetOHLCReturnsBars
func TestGetOHLCReturnsBars(t *testing.T) {
	srv, store := newTestServer(t)
	seedPair(t, store, 5)

	w := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/ohlc/BTCUSDT", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var rows []OHLCRow
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 bars, got %d", len(rows))
	}
	if !rows[0].Timestamp.Before(rows[4].Timestamp) {
		t.Error("bars must be ascending by period")
	}
}

// go test -v --run TestPostZScoreUpdatesTracker
func TestPostZScoreUpdatesTracker(t *testing.T) {
	srv, store := newTestServer(t)
	seedPair(t, store, 30)

	body := `{"symbol_y":"BTCUSDT","symbol_x":"ETHUSDT","timeframe":"1s","window":5}`
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/analytics/zscore", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rows []ZScoreRow
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected analytics rows for seeded history")
	}

	// The query recorded the latest observation.
	if _, ok := srv.tracker.Get("BTCUSDT", "ETHUSDT", alert.MetricZScore); !ok {
		t.Error("expected tracker to hold the latest z-score")
	}
	if _, ok := srv.tracker.Get("BTCUSDT", "ETHUSDT", alert.MetricBeta); !ok {
		t.Error("expected tracker to hold the latest beta")
	}
}

// go test -v --run TestPostZScoreEmptyHistory
func TestPostZScoreEmptyHistory(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"symbol_y":"BTCUSDT","symbol_x":"ETHUSDT","window":5}`
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/analytics/zscore", body)
	if w.Code != http.StatusOK {
		t.Fatalf("no history must be an empty result, got %d", w.Code)
	}

	var rows []ZScoreRow
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty result, got %d rows", len(rows))
	}
}

// go test -v --run TestPostZScoreBadRequest
func TestPostZScoreBadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	// Missing window
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/analytics/zscore",
		`{"symbol_y":"BTCUSDT","symbol_x":"ETHUSDT"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing window, got %d", w.Code)
	}

	// Unknown timeframe
	w = doJSON(t, srv.Router(), http.MethodPost, "/api/v1/analytics/zscore",
		`{"symbol_y":"BTCUSDT","symbol_x":"ETHUSDT","timeframe":"7x","window":5}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad timeframe, got %d", w.Code)
	}
}

// go test -v --run TestPostADFInsufficient
func TestPostADFInsufficient(t *testing.T) {
	srv, store := newTestServer(t)
	seedPair(t, store, 5) // below the 10-observation floor

	body := `{"symbol_y":"BTCUSDT","symbol_x":"ETHUSDT","window":5}`
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/analytics/adf", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp ADFResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Verdict != "insufficient data" {
		t.Errorf("expected insufficient-data verdict, got %q", resp.Verdict)
	}
}

// go test -v --run TestPostADFRuns
func TestPostADFRuns(t *testing.T) {
	srv, store := newTestServer(t)
	seedPair(t, store, 60)

	body := `{"symbol_y":"BTCUSDT","symbol_x":"ETHUSDT","window":5}`
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/analytics/adf", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ADFResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Verdict != "stationary" && resp.Verdict != "non-stationary" {
		t.Fatalf("expected a test verdict, got %q", resp.Verdict)
	}
	if len(resp.CriticalValues) != 3 {
		t.Errorf("expected 1%%/5%%/10%% critical values, got %v", resp.CriticalValues)
	}
}

// go test -v --run TestLiveAlertsLifecycle
func TestLiveAlertsLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodGet, "/api/v1/alerts/live", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected empty alert array, got %d %s", w.Code, w.Body.String())
	}

	srv.tracker.Record("BTCUSDT", "ETHUSDT", alert.MetricZScore, 2.7)
	w = doJSON(t, router, http.MethodGet, "/api/v1/alerts/live", "")
	var alerts []string
	if err := json.Unmarshal(w.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(alerts) != 1 || !strings.Contains(alerts[0], "BTCUSDT_ETHUSDT") {
		t.Fatalf("expected one alert for the pair, got %v", alerts)
	}

	srv.tracker.Record("BTCUSDT", "ETHUSDT", alert.MetricZScore, 1.0)
	w = doJSON(t, router, http.MethodGet, "/api/v1/alerts/live", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("alert must disappear after reversion, got %s", w.Body.String())
	}
}
