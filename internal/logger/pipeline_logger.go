// Package logger provides pipeline-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for prediction pipeline operations.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogStepCompleted logs completion of a pipeline step.
func (pl *PipelineLogger) LogStepCompleted(symbol, step string, itemCount int, cached bool, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"symbol":      symbol,
		"step":        step,
		"item_count":  itemCount,
		"cached":      cached,
		"duration_ms": durationMs,
	}).Info("Pipeline step completed")
}

// LogStepFailed logs a pipeline step failure.
func (pl *PipelineLogger) LogStepFailed(symbol, step string, err error) {
	pl.WithFields(logrus.Fields{
		"symbol": symbol,
		"step":   step,
	}).WithError(err).Error("Pipeline step failed")
}

// LogPredictionGenerated logs a completed prediction.
func (pl *PipelineLogger) LogPredictionGenerated(symbol string, promptLen, responseLen int, targetPrice string, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"symbol":       symbol,
		"prompt_len":   promptLen,
		"response_len": responseLen,
		"target_price": targetPrice,
		"duration_ms":  durationMs,
	}).Info("Prediction generated")
}

// LogBacktestSymbol logs the outcome for one backtested symbol.
func (pl *PipelineLogger) LogBacktestSymbol(symbol string, success bool, pctError float64, directionCorrect bool) {
	pl.WithFields(logrus.Fields{
		"symbol":            symbol,
		"success":           success,
		"pct_error":         pctError,
		"direction_correct": directionCorrect,
	}).Info("Backtest symbol evaluated")
}
