package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const dailySeriesBody = `{
	"Meta Data": {"2. Symbol": "AAPL"},
	"Time Series (Daily)": {
		"2026-08-28": {"1. open": "201.00", "2. high": "203.00", "3. low": "200.10", "4. close": "202.14", "5. volume": "41200300"},
		"2026-08-26": {"1. open": "200.50", "2. high": "202.00", "3. low": "199.80", "4. close": "201.80", "5. volume": "39877100"},
		"2026-08-27": {"1. open": "201.90", "2. high": "202.40", "3. low": "198.50", "4. close": "198.89", "5. volume": "45122800"}
	}
}`

const throttleNote = "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."

func newTestClient(t *testing.T, handler http.HandlerFunc) (*AlphaVantageClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	httpClient := NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           5 * time.Second,
		MaxRetries:        0,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      10 * time.Millisecond,
		RateLimit:         100,
		CircuitBreakerMax: 5,
	}, nil)
	client := NewAlphaVantageClient(httpClient, server.URL, "test-key", nil)
	return client, server
}

// TestFetchDailyPricesSuccess tests parsing and ordering of a daily series
func TestFetchDailyPricesSuccess(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != dailySeriesFunction {
			t.Errorf("expected function %s, got %s", dailySeriesFunction, got)
		}
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("expected symbol AAPL, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dailySeriesBody))
	})
	defer server.Close()

	series, err := client.FetchDailyPrices(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(series.Points) != 3 {
		t.Fatalf("expected 3 price points, got %d", len(series.Points))
	}

	// Points must be ordered oldest first regardless of map iteration order
	for i := 1; i < len(series.Points); i++ {
		if !series.Points[i-1].Date.Before(series.Points[i].Date) {
			t.Errorf("expected ascending dates, got %v before %v", series.Points[i-1].Date, series.Points[i].Date)
		}
	}

	if series.Points[0].Close != 201.80 {
		t.Errorf("expected oldest close 201.80, got %f", series.Points[0].Close)
	}

	last, ok := series.Last()
	if !ok {
		t.Fatal("expected a last price point")
	}
	if last.Close != 202.14 {
		t.Errorf("expected latest close 202.14, got %f", last.Close)
	}
}

// TestFetchDailyPricesThrottleNote tests that throttle notices surface unchanged
func TestFetchDailyPricesThrottleNote(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Note": "` + throttleNote + `"}`))
	})
	defer server.Close()

	_, err := client.FetchDailyPrices(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error for throttled request")
	}

	if !strings.Contains(err.Error(), throttleNote) {
		t.Errorf("expected provider note in error, got: %v", err)
	}

	srcErr, ok := err.(SourceError)
	if !ok {
		t.Fatalf("expected SourceError, got %T", err)
	}
	if srcErr.Code != ErrCodeRateLimitExceeded {
		t.Errorf("expected code %s, got %s", ErrCodeRateLimitExceeded, srcErr.Code)
	}
}

// TestFetchDailyPricesErrorMessage tests provider error messages
func TestFetchDailyPricesErrorMessage(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Error Message": "Invalid API call."}`))
	})
	defer server.Close()

	_, err := client.FetchDailyPrices(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected error for invalid API call")
	}
	if !strings.Contains(err.Error(), "Invalid API call.") {
		t.Errorf("expected provider message in error, got: %v", err)
	}
}

// TestFetchDailyPricesEmptySymbol tests the empty symbol guard
func TestFetchDailyPricesEmptySymbol(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	})
	defer server.Close()

	_, err := client.FetchDailyPrices(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty symbol")
	}
}

// TestFetchWindow tests date range filtering
func TestFetchWindow(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dailySeriesBody))
	})
	defer server.Close()

	start := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

	series, err := client.FetchWindow(context.Background(), "AAPL", start, end)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(series.Points) != 2 {
		t.Fatalf("expected 2 points in window, got %d", len(series.Points))
	}
}

// TestFetchWindowEmpty tests an empty window result
func TestFetchWindowEmpty(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dailySeriesBody))
	})
	defer server.Close()

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)

	_, err := client.FetchWindow(context.Background(), "AAPL", start, end)
	if err == nil {
		t.Fatal("expected error for empty window")
	}
}
