package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourusername/stockcast/internal/models"
)

type fakeUpstream struct {
	series *models.PriceSeries
	err    error
	calls  int
}

func (f *fakeUpstream) FetchDailyPrices(ctx context.Context, symbol string) (*models.PriceSeries, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func (f *fakeUpstream) FetchWindow(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	return f.FetchDailyPrices(ctx, symbol)
}

func (f *fakeUpstream) Name() string { return "fake" }

type fakePriceStore struct {
	upserts []*models.PriceSeries
	window  *models.PriceSeries
	err     error
}

func (f *fakePriceStore) UpsertSeries(ctx context.Context, series *models.PriceSeries) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, series)
	return nil
}

func (f *fakePriceStore) GetWindow(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.window, nil
}

func storedTestSeries() *models.PriceSeries {
	return &models.PriceSeries{
		Symbol: "AAPL",
		Points: []models.PricePoint{
			{Date: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), Close: 202.14},
		},
	}
}

// TestStoredSourceWriteThrough tests that fetched windows are persisted
func TestStoredSourceWriteThrough(t *testing.T) {
	store := &fakePriceStore{}
	source := NewStoredSource(&fakeUpstream{series: storedTestSeries()}, store, nil)

	series, err := source.FetchWindow(context.Background(), "AAPL", time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(series.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(series.Points))
	}
	if len(store.upserts) != 1 || store.upserts[0].Symbol != "AAPL" {
		t.Errorf("expected the fetched series to be persisted, got %d upserts", len(store.upserts))
	}
}

// TestStoredSourceFallback tests serving stored prices when the provider fails
func TestStoredSourceFallback(t *testing.T) {
	upstream := &fakeUpstream{err: errors.New("provider down")}
	store := &fakePriceStore{window: storedTestSeries()}
	source := NewStoredSource(upstream, store, nil)

	series, err := source.FetchWindow(context.Background(), "AAPL", time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("expected stored fallback, got %v", err)
	}
	if len(series.Points) != 1 {
		t.Errorf("expected the stored window, got %d points", len(series.Points))
	}
}

// TestStoredSourceFallbackEmpty tests that an empty store surfaces the provider error
func TestStoredSourceFallbackEmpty(t *testing.T) {
	upstream := &fakeUpstream{err: errors.New("provider down")}
	source := NewStoredSource(upstream, &fakePriceStore{}, nil)

	if _, err := source.FetchWindow(context.Background(), "AAPL", time.Now().AddDate(0, 0, -7), time.Now()); err == nil {
		t.Fatal("expected the provider error with nothing stored")
	}
}

// TestStoredSourcePersistFailure tests that a failing store never breaks fetches
func TestStoredSourcePersistFailure(t *testing.T) {
	upstream := &fakeUpstream{series: storedTestSeries()}
	source := NewStoredSource(upstream, &fakePriceStore{err: errors.New("db down")}, nil)

	series, err := source.FetchDailyPrices(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if series.Symbol != "AAPL" {
		t.Errorf("unexpected symbol %s", series.Symbol)
	}
}
