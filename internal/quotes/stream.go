// Package quotes maintains a live trade stream for last-price lookups.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/metrics"
)

// StreamClient handles the WebSocket connection to the trade stream
type StreamClient struct {
	conn            *websocket.Conn
	streamURL       string
	apiKey          string
	mu              sync.RWMutex
	isConnected     bool
	handlers        []TradeHandler
	subscribed      map[string]bool
	lastPrices      map[string]Quote
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *logrus.Logger
}

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// TradeHandler is called for every trade received from the stream
type TradeHandler func(trade Trade) error

// Quote is the last observed trade for a symbol
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`
	At     time.Time `json:"at"`
}

// streamMessage is the envelope of a trade stream message
type streamMessage struct {
	Type string  `json:"type"`
	Data []Trade `json:"data,omitempty"`
}

// Trade is one trade tick from the stream
type Trade struct {
	Symbol    string  `json:"s"`
	Price     float64 `json:"p"`
	Timestamp int64   `json:"t"`
	Volume    float64 `json:"v"`
}

// subscribeMessage subscribes the connection to a symbol
type subscribeMessage struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// NewStreamClient creates a new trade stream client
func NewStreamClient(streamURL, apiKey string, logger *logrus.Logger) *StreamClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &StreamClient{
		streamURL:       streamURL,
		apiKey:          apiKey,
		handlers:        make([]TradeHandler, 0),
		subscribed:      make(map[string]bool),
		lastPrices:      make(map[string]Quote),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// Connect establishes the stream connection and starts the read loop
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	wsURL := fmt.Sprintf("%s?token=%s", s.streamURL, s.apiKey)

	s.logger.WithField("url", s.streamURL).Info("Connecting to quote stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to quote stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()
	metrics.UpdateQuoteStreamConnected(true)

	// Re-subscribe symbols from a previous connection
	for symbol := range s.subscribed {
		if err := conn.WriteJSON(subscribeMessage{Type: "subscribe", Symbol: symbol}); err != nil {
			s.logger.WithField("symbol", symbol).WithError(err).Warn("Failed to re-subscribe")
		}
	}

	go s.readMessages()

	return nil
}

// ConnectWithRetry keeps trying to connect with exponential backoff
func (s *StreamClient) ConnectWithRetry(ctx context.Context) error {
	backoff := s.reconnectConfig.InitialBackoff

	var lastErr error
	for attempt := 0; attempt <= s.reconnectConfig.MaxRetries; attempt++ {
		if err := s.Connect(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		s.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"backoff": backoff.String(),
		}).Warn("Quote stream connect failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
		if backoff > s.reconnectConfig.MaxBackoff {
			backoff = s.reconnectConfig.MaxBackoff
		}
	}

	return fmt.Errorf("quote stream connect failed after %d attempts: %w", s.reconnectConfig.MaxRetries+1, lastErr)
}

// Subscribe starts streaming trades for a symbol
func (s *StreamClient) Subscribe(symbol string) error {
	s.mu.Lock()
	s.subscribed[symbol] = true
	conn := s.conn
	connected := s.isConnected
	s.mu.Unlock()

	if !connected || conn == nil {
		return fmt.Errorf("not connected to stream")
	}

	return conn.WriteJSON(subscribeMessage{Type: "subscribe", Symbol: symbol})
}

// Unsubscribe stops streaming trades for a symbol
func (s *StreamClient) Unsubscribe(symbol string) error {
	s.mu.Lock()
	delete(s.subscribed, symbol)
	conn := s.conn
	connected := s.isConnected
	s.mu.Unlock()

	if !connected || conn == nil {
		return fmt.Errorf("not connected to stream")
	}

	return conn.WriteJSON(subscribeMessage{Type: "unsubscribe", Symbol: symbol})
}

// AddHandler registers a trade handler
func (s *StreamClient) AddHandler(handler TradeHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// LastPrice returns the last observed quote for a symbol
func (s *StreamClient) LastPrice(symbol string) (Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quote, ok := s.lastPrices[symbol]
	return quote, ok
}

// readMessages reads messages from the WebSocket connection
func (s *StreamClient) readMessages() {
	defer s.Close()

	for {
		var raw json.RawMessage
		if err := s.conn.ReadJSON(&raw); err != nil {
			s.logger.WithError(err).Warn("Quote stream read failed")
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()
			metrics.UpdateQuoteStreamConnected(false)
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		var msg streamMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.WithError(err).Debug("Skipping unparseable stream message")
			continue
		}

		if msg.Type != "trade" {
			continue
		}

		s.handleTrades(msg.Data)
	}
}

func (s *StreamClient) handleTrades(trades []Trade) {
	s.mu.Lock()
	for _, trade := range trades {
		s.lastPrices[trade.Symbol] = Quote{
			Symbol: trade.Symbol,
			Price:  trade.Price,
			Volume: trade.Volume,
			At:     time.UnixMilli(trade.Timestamp),
		}
	}
	handlers := s.handlers
	s.mu.Unlock()

	for _, trade := range trades {
		metrics.RecordQuoteMessage(trade.Symbol, trade.Price)
		for _, handler := range handlers {
			if err := handler(trade); err != nil {
				s.logger.WithField("symbol", trade.Symbol).WithError(err).Warn("Trade handler error")
			}
		}
	}
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	s.isConnected = false
	metrics.UpdateQuoteStreamConnected(false)
	return s.conn.Close()
}
