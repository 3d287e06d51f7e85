package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome status values recorded in a snapshot.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const (
	snapshotFilePattern = "backtest_results_%s.json"
	reportFilePattern   = "backtest_report_%s.txt"
	timestampLayout     = "20060102_150405"
	dateLayout          = "2006-01-02"
)

// PredictionData carries the generated prediction as stored in a snapshot.
type PredictionData struct {
	Symbol      string            `json:"symbol"`
	UserQuery   string            `json:"user_query"`
	Prediction  string            `json:"prediction"`
	Sections    map[string]string `json:"sections"`
	TargetPrice string            `json:"target_price,omitempty"`
	Timestamp   string            `json:"timestamp"`
}

// PredictionSnapshot wraps prediction data with its generation status.
type PredictionSnapshot struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    *PredictionData `json:"data,omitempty"`
}

// EvaluationPrediction records the predicted side of an evaluation.
type EvaluationPrediction struct {
	PredictedPrice *decimal.Decimal `json:"predicted_price"`
	TargetPriceRaw string           `json:"target_price_raw,omitempty"`
}

// EvaluationActual records the observed side of an evaluation.
type EvaluationActual struct {
	LastTrainPrice *decimal.Decimal `json:"last_train_price"`
	ActualPrice    *decimal.Decimal `json:"actual_price"`
	Date           string           `json:"date"`
}

// Evaluation holds one symbol's prediction matched against its outcome.
type Evaluation struct {
	Symbol     string               `json:"symbol"`
	TestDate   string               `json:"test_date"`
	Prediction EvaluationPrediction `json:"prediction"`
	Actual     EvaluationActual     `json:"actual"`
	Metrics    EvaluationMetrics    `json:"metrics"`
}

// SymbolOutcome is the complete record for one backtested symbol. Failed
// symbols carry a message instead of an evaluation.
type SymbolOutcome struct {
	Status         string              `json:"status"`
	Message        string              `json:"message,omitempty"`
	PredictionDate string              `json:"prediction_date,omitempty"`
	TestDate       string              `json:"test_date,omitempty"`
	Prediction     *PredictionSnapshot `json:"prediction,omitempty"`
	Evaluation     *Evaluation         `json:"evaluation,omitempty"`
	Timestamp      string              `json:"timestamp"`
}

// Snapshot maps symbol to outcome, the shape persisted to disk.
type Snapshot map[string]SymbolOutcome

// Symbols returns the snapshot's symbols in sorted order so reports render
// deterministically.
func (s Snapshot) Symbols() []string {
	symbols := make([]string, 0, len(s))
	for symbol := range s {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Metrics collects the evaluation metrics of every outcome, counting failed
// symbols as evaluations without a prediction.
func (s Snapshot) Metrics() []EvaluationMetrics {
	results := make([]EvaluationMetrics, 0, len(s))
	for _, symbol := range s.Symbols() {
		outcome := s[symbol]
		if outcome.Evaluation == nil {
			results = append(results, EvaluationMetrics{HasPrediction: false})
			continue
		}
		results = append(results, outcome.Evaluation.Metrics)
	}
	return results
}

// SaveSnapshot writes the snapshot as timestamped JSON under outputDir and
// returns the file path.
func SaveSnapshot(snapshot Snapshot, outputDir string, runTime time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf(snapshotFilePattern, runTime.Format(timestampLayout)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a previously saved snapshot from disk.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snapshot, nil
}
