package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pairwatch/internal/market"
)

type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

// GetKlines fetches historical klines for a symbol from the Binance REST API.
// The interval is the timeframe label ("1s", "1m", ...), which matches the
// exchange's interval token.
func (c *RESTClient) GetKlines(ctx context.Context, symbol string, tf market.Timeframe,
	start, end time.Time) ([]market.Bar, error) {

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", tf.Label)
	q.Set("startTime", fmt.Sprintf("%d", start.UnixMilli()))
	q.Set("endTime", fmt.Sprintf("%d", end.UnixMilli()))
	q.Set("limit", "1000")

	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, q.Encode())

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Execute the HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("binance error: %s", body)
	}

	// The klines endpoint returns a bare array of rows with mixed field types.
	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	bars, err := ParseKlineRows(symbol, tf, rows)
	if err != nil {
		return nil, fmt.Errorf("parse result: %w", err)
	}

	return bars, nil
}
