package backtest

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func buildSnapshot(t *testing.T) Snapshot {
	t.Helper()
	predicted := mustDecimal(t, predictedPrice)
	lastTrain := mustDecimal(t, lastTrainPrice)
	actual := mustDecimal(t, actualPrice)
	pctErr, err := CalculatePercentageError(predicted, actual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	absErr := predicted.Sub(actual).Abs()
	direction := true

	return Snapshot{
		"AAPL": {
			Status:         StatusSuccess,
			PredictionDate: "2026-08-28",
			TestDate:       "2026-08-29",
			Evaluation: &Evaluation{
				Symbol:   "AAPL",
				TestDate: "2026-08-29",
				Prediction: EvaluationPrediction{
					PredictedPrice: &predicted,
					TargetPriceRaw: predictedPrice,
				},
				Actual: EvaluationActual{
					LastTrainPrice: &lastTrain,
					ActualPrice:    &actual,
					Date:           "2026-08-29",
				},
				Metrics: EvaluationMetrics{
					HasPrediction:    true,
					AbsoluteError:    &absErr,
					PercentageError:  &pctErr,
					DirectionCorrect: &direction,
				},
			},
			Timestamp: "2026-08-30T10:30:00Z",
		},
		"MSFT": {
			Status:    StatusError,
			Message:   "prediction failed: model unavailable",
			Timestamp: "2026-08-30T10:30:05Z",
		},
	}
}

func TestGenerateReport(t *testing.T) {
	snapshot := buildSnapshot(t)
	generatedAt := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)

	report := GenerateReport(snapshot, generatedAt)

	wantLines := []string{
		"===== STOCK PREDICTION BACKTEST REPORT =====",
		"Generated: 2026-08-30 10:30:00",
		"----- AAPL -----",
		"Prediction date: 2026-08-28",
		"Test date: 2026-08-29",
		"Predicted price: $430.60",
		"Last training price: $385.73",
		"Actual price on 2026-08-29: $436.17",
		"Actual change: $50.44",
		"Absolute error: $5.57",
		"Percentage error: 1.28%",
		"Direction prediction correct: true",
		"----- MSFT -----",
		"Status: error",
		"Message: prediction failed: model unavailable",
		"===== SUMMARY STATISTICS =====",
		"Total symbols tested: 2",
		"Successful predictions: 1/2 (50.0%)",
		"Direction accuracy: 1/1 (100.0%)",
		"Average absolute error: $5.57",
		"Average percentage error: 1.28%",
	}
	for _, line := range wantLines {
		if !strings.Contains(report, line) {
			t.Errorf("report missing line %q", line)
		}
	}

	// Failed symbols render status, not price lines.
	if strings.Count(report, "Predicted price:") != 1 {
		t.Error("expected exactly one predicted price line")
	}
}

func TestGenerateReportSymbolOrder(t *testing.T) {
	snapshot := buildSnapshot(t)
	report := GenerateReport(snapshot, time.Now())

	aapl := strings.Index(report, "----- AAPL -----")
	msft := strings.Index(report, "----- MSFT -----")
	if aapl == -1 || msft == -1 || aapl > msft {
		t.Error("expected symbols in sorted order")
	}
}

func TestGenerateReportNoSuccesses(t *testing.T) {
	snapshot := Snapshot{
		"AAPL": {Status: StatusError, Message: "prediction failed", Timestamp: "2026-08-30T10:30:00Z"},
	}

	report := GenerateReport(snapshot, time.Now())
	if !strings.Contains(report, "Successful predictions: 0/1 (0.0%)") {
		t.Error("expected zero success rate")
	}
	if !strings.Contains(report, "Direction accuracy: 0/0 (0.0%)") {
		t.Error("expected zero direction accuracy without division")
	}
	if strings.Contains(report, "NaN") {
		t.Error("report must not contain NaN")
	}
	if strings.Contains(report, "Average percentage error") || strings.Contains(report, "Average absolute error") {
		t.Error("expected no average lines without successes")
	}
}

func TestGenerateReportMissingTargetPrice(t *testing.T) {
	lastTrain := mustDecimal(t, lastTrainPrice)
	actual := mustDecimal(t, actualPrice)
	snapshot := Snapshot{
		"AAPL": {
			Status:         StatusSuccess,
			PredictionDate: "2026-08-28",
			TestDate:       "2026-08-29",
			Evaluation: &Evaluation{
				Symbol:   "AAPL",
				TestDate: "2026-08-29",
				Prediction: EvaluationPrediction{
					TargetPriceRaw: "around $430",
				},
				Actual: EvaluationActual{
					LastTrainPrice: &lastTrain,
					ActualPrice:    &actual,
					Date:           "2026-08-29",
				},
				Metrics: EvaluationMetrics{HasPrediction: false},
			},
			Timestamp: "2026-08-30T10:30:00Z",
		},
	}

	report := GenerateReport(snapshot, time.Now())
	if !strings.Contains(report, "No target price could be extracted from the prediction") {
		t.Error("expected missing target price notice")
	}
	if strings.Contains(report, "Percentage error:") {
		t.Error("expected no metric lines without a prediction")
	}

	// The observed prices still render so the block is readable on its own.
	wantLines := []string{
		"Predicted price: Not available",
		"Raw target price: around $430",
		"Last training price: $385.73",
		"Actual price on 2026-08-29: $436.17",
	}
	for _, line := range wantLines {
		if !strings.Contains(report, line) {
			t.Errorf("report missing line %q", line)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	snapshot := buildSnapshot(t)
	runTime := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)
	dir := t.TempDir()

	path, err := SaveSnapshot(snapshot, dir, runTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "backtest_results_20260830_103000.json" {
		t.Errorf("unexpected snapshot file name: %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Report-only mode must reproduce the original report exactly.
	original := GenerateReport(snapshot, runTime)
	regenerated := GenerateReport(loaded, runTime)
	if original != regenerated {
		t.Error("regenerated report differs from original")
	}
}

func TestSaveReport(t *testing.T) {
	dir := t.TempDir()
	runTime := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)

	path, err := SaveReport("report body\n", dir, runTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "backtest_report_20260830_103000.txt" {
		t.Errorf("unexpected report file name: %s", filepath.Base(path))
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSummaryFromEngineMetrics(t *testing.T) {
	snapshot := buildSnapshot(t)
	summary := Summarize(snapshot.Metrics())
	if summary.TotalSymbols != 2 || summary.SuccessfulCount != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if got := summary.AvgPercentageError.StringFixed(4); got != expectedPctErr {
		t.Errorf("avg percentage error: got %s, want %s", got, expectedPctErr)
	}
}
