package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/backtest"
	"github.com/yourusername/stockcast/internal/models"
	"github.com/yourusername/stockcast/internal/repository"
)

// BacktestRunner runs a backtest over a set of symbols.
type BacktestRunner interface {
	Run(ctx context.Context) (*backtest.RunResult, error)
}

// RunnerFactory builds a runner for a request, allowing symbol overrides.
type RunnerFactory func(symbols []string) BacktestRunner

// BacktestHandler exposes backtest runs and stored results
type BacktestHandler struct {
	newRunner RunnerFactory
	outputDir string
	runs      repository.BacktestRunRepository
	log       *logrus.Logger
}

// NewBacktestHandler creates a new backtest handler. The runs repository may
// be nil when persistence is disabled.
func NewBacktestHandler(newRunner RunnerFactory, outputDir string, runs repository.BacktestRunRepository, log *logrus.Logger) *BacktestHandler {
	return &BacktestHandler{newRunner: newRunner, outputDir: outputDir, runs: runs, log: log}
}

// Run handles POST /api/v1/backtest
func (h *BacktestHandler) Run(c *gin.Context) {
	var req BacktestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: ErrorDetail{Code: codeInvalidRequest, Message: err.Error()},
			})
			return
		}
	}

	runner := h.newRunner(req.Symbols)
	result, err := runner.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: codeBacktestError, Message: err.Error()},
		})
		return
	}

	snapshotPath, err := backtest.SaveSnapshot(result.Snapshot, h.outputDir, result.RunTime)
	if err != nil {
		h.log.WithError(err).Error("Failed to save backtest snapshot")
	}
	report := backtest.GenerateReport(result.Snapshot, result.RunTime)
	reportPath, err := backtest.SaveReport(report, h.outputDir, result.RunTime)
	if err != nil {
		h.log.WithError(err).Error("Failed to save backtest report")
	}

	summary := backtest.Summarize(result.Snapshot.Metrics())
	runID := h.persistRun(c.Request.Context(), result, summary)

	c.JSON(http.StatusOK, BacktestResponse{
		Status:       "completed",
		RunID:        runID,
		Snapshot:     result.Snapshot,
		Summary:      summaryPayload(summary),
		SnapshotPath: snapshotPath,
		ReportPath:   reportPath,
	})
}

// Report handles GET /api/v1/backtest/:id/report, regenerating the text
// report from a stored run's snapshot.
func (h *BacktestHandler) Report(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: codeNotFound, Message: "backtest persistence is disabled"},
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: codeInvalidRequest, Message: "invalid run id"},
		})
		return
	}

	run, err := h.runs.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: codeBacktestError, Message: err.Error()},
		})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: codeNotFound, Message: "backtest run not found"},
		})
		return
	}

	var snapshot backtest.Snapshot
	if err := json.Unmarshal(run.Snapshot, &snapshot); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: codeBacktestError, Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, ReportResponse{
		Status: "success",
		Report: backtest.GenerateReport(snapshot, run.RunDate),
	})
}

// Latest handles GET /api/v1/backtest/latest
func (h *BacktestHandler) Latest(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: codeNotFound, Message: "backtest persistence is disabled"},
		})
		return
	}

	runs, err := h.runs.GetLatest(c.Request.Context(), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: codeBacktestError, Message: err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "runs": runs})
}

// persistRun stores the run and returns its id, or "" when persistence is
// disabled or fails.
func (h *BacktestHandler) persistRun(ctx context.Context, result *backtest.RunResult, summary backtest.Summary) string {
	if h.runs == nil {
		return ""
	}

	raw, err := json.Marshal(result.Snapshot)
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal backtest snapshot")
		return ""
	}

	avgError := 0.0
	if summary.AvgPercentageError != nil {
		avgError = summary.AvgPercentageError.InexactFloat64()
	}
	run := &models.BacktestRun{
		ID:                uuid.New(),
		RunDate:           result.RunTime,
		TrainStart:        result.Windows.TrainStart,
		TrainEnd:          result.Windows.TrainEnd,
		TestDate:          result.Windows.TestDate,
		Symbols:           result.Snapshot.Symbols(),
		SuccessCount:      summary.SuccessfulCount,
		DirectionAccuracy: summary.DirectionAccuracy(),
		AvgPctError:       avgError,
		Snapshot:          raw,
		CreatedAt:         time.Now().UTC(),
	}
	if err := h.runs.Create(ctx, run); err != nil {
		h.log.WithError(err).Error("Failed to persist backtest run")
		return ""
	}
	return run.ID.String()
}
