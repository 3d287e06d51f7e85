package api

import (
	"github.com/yourusername/stockcast/internal/backtest"
	"github.com/yourusername/stockcast/internal/models"
)

// Error codes returned by the API.
const (
	codeInvalidRequest  = "INVALID_REQUEST"
	codeMissingStep     = "MISSING_STEP"
	codeUpstreamError   = "UPSTREAM_ERROR"
	codePredictionError = "PREDICTION_ERROR"
	codeBacktestError   = "BACKTEST_ERROR"
	codeNotFound        = "NOT_FOUND"
)

// ErrorDetail describes a single API error
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the error envelope returned by every failing endpoint
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// StepRequest names the symbol a prediction step should run for
type StepRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// StepResponse reports a completed prediction step
type StepResponse struct {
	Status    string `json:"status"`
	Symbol    string `json:"symbol"`
	Step      string `json:"step"`
	ItemCount int    `json:"item_count"`
}

// PredictionResponse wraps a generated prediction
type PredictionResponse struct {
	Status string                   `json:"status"`
	Result *models.PredictionResult `json:"result"`
}

// BacktestRequest optionally overrides the configured symbols
type BacktestRequest struct {
	Symbols []string `json:"symbols"`
}

// BacktestResponse reports a completed backtest run
type BacktestResponse struct {
	Status       string            `json:"status"`
	RunID        string            `json:"run_id,omitempty"`
	Snapshot     backtest.Snapshot `json:"results"`
	Summary      SummaryPayload    `json:"summary"`
	SnapshotPath string            `json:"snapshot_path,omitempty"`
	ReportPath   string            `json:"report_path,omitempty"`
}

// SummaryPayload mirrors the report's summary statistics
type SummaryPayload struct {
	TotalSymbols       int     `json:"total_symbols"`
	SuccessfulCount    int     `json:"successful_count"`
	SuccessRate        float64 `json:"success_rate"`
	DirectionCorrect   int     `json:"direction_correct_count"`
	DirectionAccuracy  float64 `json:"direction_accuracy"`
	AvgAbsoluteError   string  `json:"avg_absolute_error,omitempty"`
	AvgPercentageError string  `json:"avg_percentage_error,omitempty"`
}

// ReportResponse carries a rendered text report
type ReportResponse struct {
	Status string `json:"status"`
	Report string `json:"report"`
}

// QuoteResponse reports the latest streamed price for a symbol
type QuoteResponse struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Timestamp string  `json:"timestamp"`
	Connected bool    `json:"stream_connected"`
}

func summaryPayload(summary backtest.Summary) SummaryPayload {
	payload := SummaryPayload{
		TotalSymbols:      summary.TotalSymbols,
		SuccessfulCount:   summary.SuccessfulCount,
		SuccessRate:       summary.SuccessRate(),
		DirectionCorrect:  summary.DirectionCorrect,
		DirectionAccuracy: summary.DirectionAccuracy(),
	}
	if summary.AvgAbsoluteError != nil {
		payload.AvgAbsoluteError = summary.AvgAbsoluteError.StringFixed(2)
	}
	if summary.AvgPercentageError != nil {
		payload.AvgPercentageError = summary.AvgPercentageError.StringFixed(2)
	}
	return payload
}
