package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	reportHeader  = "===== STOCK PREDICTION BACKTEST REPORT ====="
	summaryHeader = "===== SUMMARY STATISTICS ====="
)

// GenerateReport renders the snapshot as a plain-text report. Symbols are
// rendered in sorted order so the same snapshot always yields the same
// report.
func GenerateReport(snapshot Snapshot, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString(reportHeader + "\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.Format("2006-01-02 15:04:05")))

	for _, symbol := range snapshot.Symbols() {
		writeSymbolBlock(&b, symbol, snapshot[symbol])
	}

	writeSummaryBlock(&b, Summarize(snapshot.Metrics()))
	return b.String()
}

func writeSymbolBlock(b *strings.Builder, symbol string, outcome SymbolOutcome) {
	b.WriteString(fmt.Sprintf("----- %s -----\n", symbol))

	if outcome.Status != StatusSuccess || outcome.Evaluation == nil {
		b.WriteString(fmt.Sprintf("Status: %s\n", outcome.Status))
		if outcome.Message != "" {
			b.WriteString(fmt.Sprintf("Message: %s\n", outcome.Message))
		}
		b.WriteString("\n")
		return
	}

	eval := outcome.Evaluation
	b.WriteString(fmt.Sprintf("Prediction date: %s\n", outcome.PredictionDate))
	b.WriteString(fmt.Sprintf("Test date: %s\n", outcome.TestDate))

	if !eval.Metrics.HasPrediction {
		b.WriteString("Predicted price: Not available\n")
		if eval.Prediction.TargetPriceRaw != "" {
			b.WriteString(fmt.Sprintf("Raw target price: %s\n", eval.Prediction.TargetPriceRaw))
		}
		writeActualLines(b, eval)
		b.WriteString("No target price could be extracted from the prediction\n\n")
		return
	}

	b.WriteString(fmt.Sprintf("Predicted price: $%s\n", eval.Prediction.PredictedPrice.StringFixed(2)))
	writeActualLines(b, eval)
	if eval.Metrics.AbsoluteError != nil {
		b.WriteString(fmt.Sprintf("Absolute error: $%s\n", eval.Metrics.AbsoluteError.StringFixed(2)))
	}
	if eval.Metrics.PercentageError != nil {
		b.WriteString(fmt.Sprintf("Percentage error: %s%%\n", eval.Metrics.PercentageError.StringFixed(2)))
	}
	if eval.Metrics.DirectionCorrect != nil {
		b.WriteString(fmt.Sprintf("Direction prediction correct: %t\n", *eval.Metrics.DirectionCorrect))
	}
	b.WriteString("\n")
}

func writeActualLines(b *strings.Builder, eval *Evaluation) {
	if eval.Actual.LastTrainPrice != nil {
		b.WriteString(fmt.Sprintf("Last training price: $%s\n", eval.Actual.LastTrainPrice.StringFixed(2)))
	}
	if eval.Actual.ActualPrice != nil {
		b.WriteString(fmt.Sprintf("Actual price on %s: $%s\n", eval.Actual.Date, eval.Actual.ActualPrice.StringFixed(2)))
	}
	if eval.Actual.LastTrainPrice != nil && eval.Actual.ActualPrice != nil {
		change := eval.Actual.ActualPrice.Sub(*eval.Actual.LastTrainPrice)
		b.WriteString(fmt.Sprintf("Actual change: $%s\n", change.StringFixed(2)))
	}
}

func writeSummaryBlock(b *strings.Builder, summary Summary) {
	b.WriteString(summaryHeader + "\n")
	b.WriteString(fmt.Sprintf("Total symbols tested: %d\n", summary.TotalSymbols))
	b.WriteString(fmt.Sprintf("Successful predictions: %d/%d (%.1f%%)\n",
		summary.SuccessfulCount, summary.TotalSymbols, summary.SuccessRate()))
	b.WriteString(fmt.Sprintf("Direction accuracy: %d/%d (%.1f%%)\n",
		summary.DirectionCorrect, summary.SuccessfulCount, summary.DirectionAccuracy()))
	if summary.AvgAbsoluteError != nil {
		b.WriteString(fmt.Sprintf("Average absolute error: $%s\n", summary.AvgAbsoluteError.StringFixed(2)))
	}
	if summary.AvgPercentageError != nil {
		b.WriteString(fmt.Sprintf("Average percentage error: %s%%\n", summary.AvgPercentageError.StringFixed(2)))
	}
}

// SaveReport writes the report under outputDir with a timestamped name and
// returns the file path.
func SaveReport(report, outputDir string, runTime time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf(reportFilePattern, runTime.Format(timestampLayout)))
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
