package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourusername/stockcast/internal/models"
)

type fakePrices struct {
	calls  int
	series *models.PriceSeries
	err    error
}

func (f *fakePrices) FetchWindow(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

type fakeNews struct {
	calls    int
	articles []models.NewsArticle
	err      error
}

func (f *fakeNews) FetchRecent(ctx context.Context, symbol string, asOf time.Time) ([]models.NewsArticle, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

type fakeSocial struct {
	calls int
	data  *models.SocialData
}

func (f *fakeSocial) FetchSocialData(ctx context.Context, symbol string, limit int) *models.SocialData {
	f.calls++
	if f.data == nil {
		return models.EmptySocialData()
	}
	return f.data
}

type fakeGenerator struct {
	calls    int
	response string
	err      error
}

func (f *fakeGenerator) GeneratePrediction(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testSeries() *models.PriceSeries {
	return &models.PriceSeries{
		Symbol: "AAPL",
		Points: []models.PricePoint{
			{Date: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), Close: 200.00},
			{Date: time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC), Close: 201.80},
		},
	}
}

func newTestService(prices *fakePrices, news *fakeNews, social *fakeSocial, gen *fakeGenerator) *Service {
	return NewService(prices, news, social, gen, Config{
		TrainingWindowDays: 21,
		NewsLimit:          10,
		SocialLimit:        10,
		CacheTTL:           time.Minute,
	}, nil)
}

const fakeResponse = `SUMMARY: Looks stable.
PREDICTION: Target of $202.50 tomorrow.
CONFIDENCE LEVEL: Medium.`

// TestPredictRunsAllSteps tests the full pipeline flow
func TestPredictRunsAllSteps(t *testing.T) {
	prices := &fakePrices{series: testSeries()}
	news := &fakeNews{articles: []models.NewsArticle{{Title: "Story", Symbol: "AAPL"}}}
	social := &fakeSocial{}
	gen := &fakeGenerator{response: fakeResponse}

	service := newTestService(prices, news, social, gen)
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	result, err := service.Predict(context.Background(), "AAPL", "Up or down?", asOf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if prices.calls != 1 || news.calls != 1 || social.calls != 1 || gen.calls != 1 {
		t.Errorf("expected one call per step, got prices=%d news=%d social=%d gen=%d",
			prices.calls, news.calls, social.calls, gen.calls)
	}

	if !result.HasTargetPrice() {
		t.Fatal("expected a target price")
	}
	if result.TargetPrice.String() != "202.5" {
		t.Errorf("expected target 202.5, got %s", result.TargetPrice.String())
	}
}

// TestStepCaching tests that repeated steps hit the cache
func TestStepCaching(t *testing.T) {
	prices := &fakePrices{series: testSeries()}
	service := newTestService(prices, &fakeNews{}, &fakeSocial{}, &fakeGenerator{})
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := service.FetchHistorical(context.Background(), "AAPL", asOf); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	if prices.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", prices.calls)
	}

	hits, misses, _ := service.Cache().Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d/%d", hits, misses)
	}
}

// TestStepCacheKeyedByDate tests that different dates do not share entries
func TestStepCacheKeyedByDate(t *testing.T) {
	prices := &fakePrices{series: testSeries()}
	service := newTestService(prices, &fakeNews{}, &fakeSocial{}, &fakeGenerator{})

	day1 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	service.FetchHistorical(context.Background(), "AAPL", day1)
	service.FetchHistorical(context.Background(), "AAPL", day2)

	if prices.calls != 2 {
		t.Errorf("expected 2 upstream calls for distinct dates, got %d", prices.calls)
	}
}

// TestGenerateResultRequiresSteps tests the missing step guard
func TestGenerateResultRequiresSteps(t *testing.T) {
	service := newTestService(&fakePrices{series: testSeries()}, &fakeNews{}, &fakeSocial{}, &fakeGenerator{response: fakeResponse})
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	_, err := service.GenerateResult(context.Background(), "AAPL", "q", asOf)
	if !errors.Is(err, ErrMissingStep) {
		t.Fatalf("expected ErrMissingStep, got %v", err)
	}
}

// TestGenerateResultAfterSteps tests the step-by-step flow
func TestGenerateResultAfterSteps(t *testing.T) {
	service := newTestService(&fakePrices{series: testSeries()}, &fakeNews{}, &fakeSocial{}, &fakeGenerator{response: fakeResponse})
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	ctx := context.Background()
	if _, err := service.FetchHistorical(ctx, "AAPL", asOf); err != nil {
		t.Fatalf("historical step failed: %v", err)
	}
	if _, err := service.FetchNews(ctx, "AAPL", asOf); err != nil {
		t.Fatalf("news step failed: %v", err)
	}
	service.FetchSocial(ctx, "AAPL", asOf)

	result, err := service.GenerateResult(ctx, "AAPL", "q", asOf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Symbol != "AAPL" {
		t.Errorf("unexpected symbol: %s", result.Symbol)
	}

	// A completed flow clears the symbol's cached steps
	if _, err := service.GenerateResult(ctx, "AAPL", "q", asOf); !errors.Is(err, ErrMissingStep) {
		t.Errorf("expected ErrMissingStep after completed flow, got %v", err)
	}
}

// TestPredictHistoricalFailure tests error propagation from step 1
func TestPredictHistoricalFailure(t *testing.T) {
	prices := &fakePrices{err: errors.New("provider down")}
	gen := &fakeGenerator{response: fakeResponse}
	service := newTestService(prices, &fakeNews{}, &fakeSocial{}, gen)

	_, err := service.Predict(context.Background(), "AAPL", "q", time.Now())
	if err == nil {
		t.Fatal("expected error from failing price source")
	}
	if gen.calls != 0 {
		t.Errorf("expected no generator call after step failure, got %d", gen.calls)
	}
}

// TestPredictGeneratorFailure tests error propagation from step 4
func TestPredictGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	service := newTestService(&fakePrices{series: testSeries()}, &fakeNews{}, &fakeSocial{}, gen)

	_, err := service.Predict(context.Background(), "AAPL", "q", time.Now())
	if err == nil {
		t.Fatal("expected error from failing generator")
	}
}

// TestCacheInvalidate tests per-user per-symbol invalidation
func TestCacheInvalidate(t *testing.T) {
	cache := NewStepCache(time.Minute, 100)
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	cache.Set(CacheKey{User: "alice", Symbol: "AAPL", Step: StepNews, AsOf: asOf}, "a")
	cache.Set(CacheKey{User: "alice", Symbol: "MSFT", Step: StepNews, AsOf: asOf}, "b")
	cache.Set(CacheKey{User: "bob", Symbol: "AAPL", Step: StepNews, AsOf: asOf}, "c")

	cache.Invalidate("alice", "AAPL")

	if got := cache.Get(CacheKey{User: "alice", Symbol: "AAPL", Step: StepNews, AsOf: asOf}); got != nil {
		t.Error("expected alice's AAPL entry to be invalidated")
	}
	if got := cache.Get(CacheKey{User: "alice", Symbol: "MSFT", Step: StepNews, AsOf: asOf}); got == nil {
		t.Error("expected alice's MSFT entry to survive")
	}
	if got := cache.Get(CacheKey{User: "bob", Symbol: "AAPL", Step: StepNews, AsOf: asOf}); got == nil {
		t.Error("expected bob's AAPL entry to survive")
	}
}

// TestUserPartition tests that one caller's steps never satisfy another's
func TestUserPartition(t *testing.T) {
	service := newTestService(&fakePrices{series: testSeries()}, &fakeNews{}, &fakeSocial{}, &fakeGenerator{response: fakeResponse})
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	alice := WithUser(context.Background(), "alice")
	bob := WithUser(context.Background(), "bob")

	if _, err := service.FetchHistorical(alice, "AAPL", asOf); err != nil {
		t.Fatalf("historical step failed: %v", err)
	}
	if _, err := service.FetchNews(alice, "AAPL", asOf); err != nil {
		t.Fatalf("news step failed: %v", err)
	}
	service.FetchSocial(alice, "AAPL", asOf)

	if _, err := service.GenerateResult(bob, "AAPL", "q", asOf); !errors.Is(err, ErrMissingStep) {
		t.Fatalf("expected ErrMissingStep for a different user, got %v", err)
	}
	if _, err := service.GenerateResult(alice, "AAPL", "q", asOf); err != nil {
		t.Fatalf("expected alice's cached steps to satisfy the result step, got %v", err)
	}
}
