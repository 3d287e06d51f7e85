package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// newStreamServer runs a WebSocket server that records subscriptions and
// pushes one trade message per subscribed symbol.
func newStreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "test-key" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for {
			var sub subscribeMessage
			if err := conn.ReadJSON(&sub); err != nil {
				return
			}
			if sub.Type != "subscribe" {
				continue
			}
			msg := streamMessage{
				Type: "trade",
				Data: []Trade{{Symbol: sub.Symbol, Price: 201.80, Timestamp: time.Now().UnixMilli(), Volume: 100}},
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// TestStreamSubscribeAndLastPrice tests trade delivery and last-price lookup
func TestStreamSubscribeAndLastPrice(t *testing.T) {
	server := newStreamServer(t)
	defer server.Close()

	client := NewStreamClient(wsURL(server), "test-key", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Fatal("expected connected state")
	}

	received := make(chan Trade, 1)
	client.AddHandler(func(trade Trade) error {
		select {
		case received <- trade:
		default:
		}
		return nil
	})

	if err := client.Subscribe("AAPL"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	select {
	case trade := <-received:
		if trade.Symbol != "AAPL" {
			t.Errorf("expected AAPL trade, got %s", trade.Symbol)
		}
		if trade.Price != 201.80 {
			t.Errorf("expected price 201.80, got %f", trade.Price)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for trade")
	}

	// LastPrice updates may land just after the handler fires
	deadline := time.Now().Add(time.Second)
	for {
		if quote, ok := client.LastPrice("AAPL"); ok {
			if quote.Price != 201.80 {
				t.Errorf("expected last price 201.80, got %f", quote.Price)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected a last price for AAPL")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// TestStreamSubscribeNotConnected tests the not-connected guard
func TestStreamSubscribeNotConnected(t *testing.T) {
	client := NewStreamClient("ws://127.0.0.1:0", "test-key", nil)

	if err := client.Subscribe("AAPL"); err == nil {
		t.Fatal("expected error when not connected")
	}
}

// TestStreamDoubleConnect tests the already-connected guard
func TestStreamDoubleConnect(t *testing.T) {
	server := newStreamServer(t)
	defer server.Close()

	client := NewStreamClient(wsURL(server), "test-key", nil)

	ctx := context.Background()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}
	defer client.Close()

	if err := client.Connect(ctx); err == nil {
		t.Fatal("expected error on second connect")
	}
}

// TestLastPriceUnknownSymbol tests lookups for unseen symbols
func TestLastPriceUnknownSymbol(t *testing.T) {
	client := NewStreamClient("ws://127.0.0.1:0", "test-key", nil)

	if _, ok := client.LastPrice("TSLA"); ok {
		t.Fatal("expected no quote for unseen symbol")
	}
}
