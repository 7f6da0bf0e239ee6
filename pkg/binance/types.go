package binance

// MiniTicker represents one entry of the Binance "!miniTicker@arr" stream.
// The stream delivers a JSON array of these, one per symbol with activity
// in the last second. Prices and sizes arrive as strings.
type MiniTicker struct {
	EventType string `json:"e"` // always "24hrMiniTicker"
	EventTime int64  `json:"E"` // event time (milliseconds since epoch)
	Symbol    string `json:"s"` // e.g. "BTCUSDT"
	Close     string `json:"c"` // latest price
	Open      string `json:"o"` // 24h open
	High      string `json:"h"` // 24h high
	Low       string `json:"l"` // 24h low
	Volume    string `json:"v"` // rolling 24h base asset volume
	Quote     string `json:"q"` // rolling 24h quote asset volume
}

// SubscribeRequest is the subscription frame sent after connecting.
type SubscribeRequest struct {
	Method string   `json:"method"` // "SUBSCRIBE" / "UNSUBSCRIBE"
	Params []string `json:"params"` // stream names, e.g. ["!miniTicker@arr"]
	ID     int      `json:"id"`
}

// SubscribeResponse is the ack frame for a subscription request.
// Used to tell control frames apart from data frames.
type SubscribeResponse struct {
	Result interface{} `json:"result"`
	ID     int         `json:"id"`
}
