package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/llm"
	"github.com/yourusername/stockcast/internal/logger"
	"github.com/yourusername/stockcast/internal/metrics"
	"github.com/yourusername/stockcast/internal/models"
)

// Predictor generates a prediction for one symbol as of a historical date.
type Predictor interface {
	Predict(ctx context.Context, symbol, userQuery string, asOf time.Time) (*models.PredictionResult, error)
}

// PriceSource fetches daily closing prices for an inclusive date window.
type PriceSource interface {
	FetchWindow(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error)
}

// Engine runs backtests: for each symbol it generates a prediction from data
// up to the training cutoff and evaluates it against the next day's close.
type Engine struct {
	predictor Predictor
	prices    PriceSource
	config    Config
	log       *logger.PipelineLogger
	clock     func() time.Time
}

// EngineOption customises engine construction.
type EngineOption func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// NewEngine creates a backtest engine.
func NewEngine(predictor Predictor, prices PriceSource, config Config, baseLogger *logrus.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		predictor: predictor,
		prices:    prices,
		config:    config,
		log:       logger.NewPipelineLogger(baseLogger),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunResult bundles the snapshot of a completed run with its date windows.
type RunResult struct {
	Snapshot Snapshot
	Windows  Windows
	RunTime  time.Time
}

// Run backtests every configured symbol. A symbol whose prediction or
// evaluation fails is recorded with an error outcome; one bad symbol never
// aborts the run.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	started := e.clock()
	windows := e.config.WindowsAt(started)

	e.log.WithFields(logrus.Fields{
		"symbols":     e.config.Symbols,
		"train_start": windows.TrainStart.Format(dateLayout),
		"train_end":   windows.TrainEnd.Format(dateLayout),
		"test_date":   windows.TestDate.Format(dateLayout),
	}).Info("Backtest run started")

	snapshot := make(Snapshot, len(e.config.Symbols))
	for _, symbol := range e.config.Symbols {
		outcome := e.evaluateSymbol(ctx, symbol, windows)
		snapshot[symbol] = outcome

		if outcome.Status == StatusSuccess {
			metrics.RecordBacktestSymbol(StatusSuccess)
		} else {
			metrics.RecordBacktestSymbol(StatusError)
		}
	}

	summary := Summarize(snapshot.Metrics())
	avgError := 0.0
	if summary.AvgPercentageError != nil {
		avgError = summary.AvgPercentageError.InexactFloat64()
	}
	metrics.UpdateBacktestSummary(summary.DirectionAccuracy(), avgError)
	metrics.RecordBacktestRun(StatusSuccess)
	metrics.RecordBacktestDuration(e.clock().Sub(started).Seconds())

	e.log.WithFields(logrus.Fields{
		"total":      summary.TotalSymbols,
		"successful": summary.SuccessfulCount,
	}).Info("Backtest run completed")

	return &RunResult{Snapshot: snapshot, Windows: windows, RunTime: started}, nil
}

func (e *Engine) evaluateSymbol(ctx context.Context, symbol string, windows Windows) SymbolOutcome {
	timestamp := e.clock().Format(time.RFC3339)

	prediction, err := e.predictor.Predict(ctx, symbol, llm.NextDayQuery(symbol, windows.TrainEnd), windows.TrainEnd)
	if err != nil {
		e.log.LogStepFailed(symbol, "backtest_prediction", err)
		return SymbolOutcome{
			Status:    StatusError,
			Message:   fmt.Sprintf("prediction failed: %v", err),
			Timestamp: timestamp,
		}
	}

	outcome := SymbolOutcome{
		Status:         StatusSuccess,
		PredictionDate: windows.TrainEnd.Format(dateLayout),
		TestDate:       windows.TestDate.Format(dateLayout),
		Prediction:     predictionSnapshot(symbol, prediction),
		Timestamp:      timestamp,
	}

	evaluation, err := e.evaluate(ctx, symbol, prediction, windows)
	if err != nil {
		outcome.Status = StatusError
		outcome.Message = fmt.Sprintf("evaluation failed: %v", err)
		return outcome
	}
	outcome.Evaluation = evaluation

	pctError := 0.0
	direction := false
	if evaluation.Metrics.PercentageError != nil {
		pctError = evaluation.Metrics.PercentageError.InexactFloat64()
	}
	if evaluation.Metrics.DirectionCorrect != nil {
		direction = *evaluation.Metrics.DirectionCorrect
	}
	e.log.LogBacktestSymbol(symbol, evaluation.Metrics.HasPrediction, pctError, direction)

	return outcome
}

// evaluate compares the prediction's target price against the test day close.
func (e *Engine) evaluate(ctx context.Context, symbol string, prediction *models.PredictionResult, windows Windows) (*Evaluation, error) {
	training, err := e.prices.FetchWindow(ctx, symbol, windows.TrainStart, windows.TrainEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch training prices: %w", err)
	}
	lastTrain, ok := training.Last()
	if !ok {
		return nil, fmt.Errorf("no training prices for %s", symbol)
	}

	test, err := e.prices.FetchWindow(ctx, symbol, windows.TestDate, windows.TestDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch test price: %w", err)
	}
	actual, ok := test.On(windows.TestDate)
	if !ok {
		return nil, fmt.Errorf("no test price for %s on %s", symbol, windows.TestDate.Format(dateLayout))
	}

	lastTrainPrice := decimal.NewFromFloat(lastTrain.Close)
	actualPrice := decimal.NewFromFloat(actual.Close)

	evaluation := &Evaluation{
		Symbol:   symbol,
		TestDate: windows.TestDate.Format(dateLayout),
		Prediction: EvaluationPrediction{
			PredictedPrice: prediction.TargetPrice,
		},
		Actual: EvaluationActual{
			LastTrainPrice: &lastTrainPrice,
			ActualPrice:    &actualPrice,
			Date:           actual.Date.Format(dateLayout),
		},
	}
	if prediction.TargetPrice != nil {
		evaluation.Prediction.TargetPriceRaw = prediction.TargetPrice.String()
	}

	evalMetrics, err := CalculateMetrics(prediction.TargetPrice, lastTrainPrice, actualPrice)
	evaluation.Metrics = evalMetrics
	if err != nil && err != ErrMissingPrediction {
		return nil, err
	}
	// A missing target price is still a recorded evaluation; the metrics
	// simply carry HasPrediction false.
	return evaluation, nil
}

func predictionSnapshot(symbol string, prediction *models.PredictionResult) *PredictionSnapshot {
	data := &PredictionData{
		Symbol:     symbol,
		UserQuery:  prediction.UserQuery,
		Prediction: prediction.Text,
		Sections:   prediction.Sections,
		Timestamp:  prediction.GeneratedAt.Format(time.RFC3339),
	}
	if prediction.TargetPrice != nil {
		data.TargetPrice = prediction.TargetPrice.String()
	}
	return &PredictionSnapshot{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Prediction generated for %s", symbol),
		Data:    data,
	}
}
