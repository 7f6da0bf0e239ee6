package binance

import (
	"fmt"
	"time"

	"pairwatch/internal/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Backoff after the connection drops before redialing.
	reconnectBackoff = 5 * time.Second
	// Backoff after a message handler reports a processing error.
	processingBackoff = 1 * time.Second
)

// WSClient handles the WebSocket connection to Binance and message routing.
type WSClient struct {
	url     string
	streams []string
	conn    *websocket.Conn
	handler func([]byte) error
	logger  *zap.Logger
}

// NewWSClient creates a new WebSocket client for the given URL and stream names.
func NewWSClient(url string, streams []string, logger *zap.Logger) *WSClient {
	return &WSClient{
		url:     url,
		streams: streams,
		logger:  logger,
	}
}

// SetMessageHandler sets the function to handle incoming messages.
// A returned error means the message could not be processed; the read loop
// logs it and briefly backs off instead of dying.
func (c *WSClient) SetMessageHandler(h func([]byte) error) {
	c.handler = h
}

// Connect establishes the WebSocket connection and subscribes to the
// configured streams. It does not start the listener.
func (c *WSClient) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		c.logger.Error("Failed to connect to WebSocket", zap.String("url", c.url), zap.Error(err))
		return err
	}
	c.conn = conn
	c.logger.Info("WebSocket connected", zap.String("url", c.url))

	if err := c.subscribe(conn); err != nil {
		c.logger.Error("Failed to send subscription", zap.Error(err))
		return err
	}

	return nil
}

// Listen reads messages until the process exits, reconnecting indefinitely on
// read errors. The ingestion loop must outlive any single connection.
func (c *WSClient) Listen() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.Error("WebSocket read error", zap.Error(err))

			// Retry reconnecting indefinitely
			for {
				time.Sleep(reconnectBackoff)
				metrics.WSReconnects.Inc()
				if err := c.reconnectAndResubscribe(); err != nil {
					c.logger.Warn("Retrying reconnect...")
					continue
				}
				c.logger.Info("Reconnected successfully")
				break
			}
			continue // Start listening again with the new connection
		}

		if c.handler != nil {
			if err := c.handler(msg); err != nil {
				c.logger.Warn("failed to process message", zap.Error(err))
				time.Sleep(processingBackoff)
			}
		}
	}
}

func (c *WSClient) subscribe(conn *websocket.Conn) error {
	subMsg := SubscribeRequest{
		Method: "SUBSCRIBE",
		Params: c.streams,
		ID:     1,
	}
	return conn.WriteJSON(subMsg)
}

func (c *WSClient) reconnectAndResubscribe() error {
	newConn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return err
	}

	// Close the old connection if it exists
	if c.conn != nil {
		_ = c.conn.Close()
	}

	c.conn = newConn

	if err := c.subscribe(newConn); err != nil {
		return fmt.Errorf("websocket subscribe failed: %w", err)
	}

	return nil
}
