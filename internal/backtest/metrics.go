package backtest

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrMissingPrediction indicates no numeric target price could be extracted
// from the model response.
var ErrMissingPrediction = errors.New("no target price found in prediction")

// ErrZeroActualPrice indicates the actual price was zero, which makes a
// percentage error undefined.
var ErrZeroActualPrice = errors.New("actual price is zero")

// EvaluationMetrics holds the accuracy measures for one evaluated symbol.
// Pointer fields are nil when no prediction was available.
type EvaluationMetrics struct {
	HasPrediction    bool             `json:"has_prediction"`
	AbsoluteError    *decimal.Decimal `json:"absolute_error,omitempty"`
	PercentageError  *decimal.Decimal `json:"percentage_error,omitempty"`
	DirectionCorrect *bool            `json:"direction_correct,omitempty"`
}

// CalculatePercentageError returns |predicted - actual| / actual * 100.
func CalculatePercentageError(predicted, actual decimal.Decimal) (decimal.Decimal, error) {
	if actual.IsZero() {
		return decimal.Zero, ErrZeroActualPrice
	}
	hundred := decimal.NewFromInt(100)
	return predicted.Sub(actual).Abs().Div(actual.Abs()).Mul(hundred), nil
}

// CalculateDirectionCorrect reports whether the predicted move from the last
// training price has the same sign as the actual move. A flat prediction or a
// flat actual move never counts as correct.
func CalculateDirectionCorrect(predicted, lastTrain, actual decimal.Decimal) bool {
	predictedDelta := predicted.Sub(lastTrain)
	actualDelta := actual.Sub(lastTrain)
	if predictedDelta.IsZero() || actualDelta.IsZero() {
		return false
	}
	return predictedDelta.Sign() == actualDelta.Sign()
}

// CalculateMetrics evaluates a prediction against the observed outcome.
// A nil predicted price yields metrics with HasPrediction false and an
// ErrMissingPrediction error so callers can record the failure.
func CalculateMetrics(predicted *decimal.Decimal, lastTrain, actual decimal.Decimal) (EvaluationMetrics, error) {
	if predicted == nil {
		return EvaluationMetrics{HasPrediction: false}, ErrMissingPrediction
	}

	pctError, err := CalculatePercentageError(*predicted, actual)
	if err != nil {
		return EvaluationMetrics{HasPrediction: false}, err
	}

	absError := predicted.Sub(actual).Abs()
	direction := CalculateDirectionCorrect(*predicted, lastTrain, actual)

	return EvaluationMetrics{
		HasPrediction:    true,
		AbsoluteError:    &absError,
		PercentageError:  &pctError,
		DirectionCorrect: &direction,
	}, nil
}

// Summary aggregates evaluation metrics across a backtest run.
type Summary struct {
	TotalSymbols       int              `json:"total_symbols"`
	SuccessfulCount    int              `json:"successful_count"`
	DirectionCorrect   int              `json:"direction_correct_count"`
	AvgAbsoluteError   *decimal.Decimal `json:"avg_absolute_error,omitempty"`
	AvgPercentageError *decimal.Decimal `json:"avg_percentage_error,omitempty"`
}

// SuccessRate returns the share of symbols with a usable prediction,
// as a percentage of the total. Zero symbols yields zero.
func (s Summary) SuccessRate() float64 {
	if s.TotalSymbols == 0 {
		return 0
	}
	return float64(s.SuccessfulCount) / float64(s.TotalSymbols) * 100
}

// DirectionAccuracy returns the share of successful predictions whose
// direction was correct, as a percentage. Zero successes yields zero.
func (s Summary) DirectionAccuracy() float64 {
	if s.SuccessfulCount == 0 {
		return 0
	}
	return float64(s.DirectionCorrect) / float64(s.SuccessfulCount) * 100
}

// Summarize aggregates per-symbol metrics. Symbols without a prediction
// count toward the total only.
func Summarize(results []EvaluationMetrics) Summary {
	summary := Summary{TotalSymbols: len(results)}

	var pctSum, absSum decimal.Decimal
	for _, m := range results {
		if !m.HasPrediction || m.PercentageError == nil {
			continue
		}
		summary.SuccessfulCount++
		pctSum = pctSum.Add(*m.PercentageError)
		if m.AbsoluteError != nil {
			absSum = absSum.Add(*m.AbsoluteError)
		}
		if m.DirectionCorrect != nil && *m.DirectionCorrect {
			summary.DirectionCorrect++
		}
	}

	if summary.SuccessfulCount > 0 {
		count := decimal.NewFromInt(int64(summary.SuccessfulCount))
		avgPct := pctSum.Div(count)
		avgAbs := absSum.Div(count)
		summary.AvgPercentageError = &avgPct
		summary.AvgAbsoluteError = &avgAbs
	}
	return summary
}
