// Package metrics provides the centralized Prometheus metrics registry for Stockcast.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stockcast",
		Name:      "predictions_generated_total",
		Help:      "Total number of predictions generated",
	})
	LLMRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockcast",
		Name:      "llm_requests_total",
		Help:      "Total number of LLM requests by status",
	}, []string{"status"})
	NewsArticlesFetchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockcast",
		Name:      "news_articles_fetched_total",
		Help:      "Total number of news articles fetched by source",
	}, []string{"source"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stockcast",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of circuit breaker trips",
	})
	QuoteMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stockcast",
		Name:      "quote_messages_total",
		Help:      "Total number of quote stream messages received",
	})
)

// Gauge metrics
var (
	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stockcast",
		Name:      "cache_hit_ratio",
		Help:      "Ratio of pipeline cache hits to total lookups",
	})
	QuoteLastPrice = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "stockcast",
		Name:      "quote_last_price",
		Help:      "Last traded price seen on the quote stream",
	}, []string{"symbol"})
	QuoteStreamConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stockcast",
		Name:      "quote_stream_connected",
		Help:      "Whether the quote stream connection is up (1) or down (0)",
	})
)

// Histogram metrics
var (
	LLMRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stockcast",
		Name:      "llm_request_duration_seconds",
		Help:      "Duration of LLM requests in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stockcast",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PredictionsGeneratedTotal)
		registry.MustRegister(LLMRequestsTotal)
		registry.MustRegister(NewsArticlesFetchedTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(QuoteMessagesTotal)

		// Register gauge metrics
		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(QuoteLastPrice)
		registry.MustRegister(QuoteStreamConnected)

		// Register histogram metrics
		registry.MustRegister(LLMRequestDuration)
		registry.MustRegister(BacktestDuration)

		// Register pipeline metrics
		registry.MustRegister(PipelineStepsTotal)
		registry.MustRegister(PipelineStepDuration)
		registry.MustRegister(PipelineCacheLookupsTotal)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestSymbolsTotal)
		registry.MustRegister(BacktestDirectionAccuracy)
		registry.MustRegister(BacktestAvgPercentageError)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPredictionGenerated records a completed prediction.
func RecordPredictionGenerated() {
	PredictionsGeneratedTotal.Inc()
}

// RecordLLMRequest records an LLM request outcome and its duration.
func RecordLLMRequest(status string, durationSeconds float64) {
	LLMRequestsTotal.WithLabelValues(status).Inc()
	LLMRequestDuration.Observe(durationSeconds)
}

// RecordNewsArticlesFetched records articles fetched from a news source.
func RecordNewsArticlesFetched(source string, count int) {
	NewsArticlesFetchedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordQuoteMessage records a quote stream message and the last price seen.
func RecordQuoteMessage(symbol string, price float64) {
	QuoteMessagesTotal.Inc()
	QuoteLastPrice.WithLabelValues(symbol).Set(price)
}

// UpdateQuoteStreamConnected updates the quote stream connection gauge.
func UpdateQuoteStreamConnected(connected bool) {
	if connected {
		QuoteStreamConnected.Set(1)
	} else {
		QuoteStreamConnected.Set(0)
	}
}

// UpdateCacheHitRatio updates the pipeline cache hit ratio gauge.
func UpdateCacheHitRatio(ratio float64) {
	CacheHitRatio.Set(ratio)
}

// RecordBacktestDuration records backtest duration.
func RecordBacktestDuration(durationSeconds float64) {
	BacktestDuration.Observe(durationSeconds)
}
