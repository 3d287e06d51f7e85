// Package metrics defines backtesting-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockcast",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})

	BacktestSymbolsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockcast",
		Name:      "backtest_symbols_total",
		Help:      "Total number of symbols processed in backtests by status",
	}, []string{"status"})
)

// Backtest gauges
var (
	BacktestDirectionAccuracy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stockcast",
		Name:      "backtest_direction_accuracy",
		Help:      "Direction accuracy of the most recent backtest run",
	})

	BacktestAvgPercentageError = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stockcast",
		Name:      "backtest_avg_percentage_error",
		Help:      "Average percentage error of the most recent backtest run",
	})
)

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "failure"
func RecordBacktestRun(status string) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
}

// RecordBacktestSymbol records the outcome of a single symbol in a backtest.
// status should be one of: "success", "error"
func RecordBacktestSymbol(status string) {
	BacktestSymbolsTotal.WithLabelValues(status).Inc()
}

// UpdateBacktestSummary updates the summary gauges after a backtest run.
func UpdateBacktestSummary(directionAccuracy, avgPercentageError float64) {
	BacktestDirectionAccuracy.Set(directionAccuracy)
	BacktestAvgPercentageError.Set(avgPercentageError)
}
