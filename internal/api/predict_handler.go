package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/stockcast/internal/llm"
	"github.com/yourusername/stockcast/internal/models"
	"github.com/yourusername/stockcast/internal/pipeline"
)

// PredictionPipeline is the subset of the pipeline service the handlers use.
type PredictionPipeline interface {
	FetchHistorical(ctx context.Context, symbol string, asOf time.Time) (*models.PriceSeries, error)
	FetchNews(ctx context.Context, symbol string, asOf time.Time) ([]models.NewsArticle, error)
	FetchSocial(ctx context.Context, symbol string, asOf time.Time) *models.SocialData
	GenerateResult(ctx context.Context, symbol, userQuery string, asOf time.Time) (*models.PredictionResult, error)
	Predict(ctx context.Context, symbol, userQuery string, asOf time.Time) (*models.PredictionResult, error)
}

// PredictHandler exposes the stepwise prediction flow
type PredictHandler struct {
	pipeline PredictionPipeline
	clock    func() time.Time
}

// NewPredictHandler creates a new prediction handler
func NewPredictHandler(p PredictionPipeline) *PredictHandler {
	return &PredictHandler{pipeline: p, clock: time.Now}
}

// userHeader carries the caller identity used to partition cached step data.
// It is not authentication; session handling lives outside this service.
const userHeader = "X-User-ID"

func stepContext(c *gin.Context) context.Context {
	return pipeline.WithUser(c.Request.Context(), c.GetHeader(userHeader))
}

func bindStepRequest(c *gin.Context) (StepRequest, bool) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: codeInvalidRequest, Message: err.Error()},
		})
		return req, false
	}
	return req, true
}

// FetchHistorical handles POST /api/v1/predict/historical
func (h *PredictHandler) FetchHistorical(c *gin.Context) {
	req, ok := bindStepRequest(c)
	if !ok {
		return
	}

	series, err := h.pipeline.FetchHistorical(stepContext(c), req.Symbol, h.clock())
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: ErrorDetail{Code: codeUpstreamError, Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, StepResponse{
		Status:    "success",
		Symbol:    req.Symbol,
		Step:      pipeline.StepHistorical,
		ItemCount: len(series.Points),
	})
}

// FetchNews handles POST /api/v1/predict/news
func (h *PredictHandler) FetchNews(c *gin.Context) {
	req, ok := bindStepRequest(c)
	if !ok {
		return
	}

	articles, err := h.pipeline.FetchNews(stepContext(c), req.Symbol, h.clock())
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: ErrorDetail{Code: codeUpstreamError, Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, StepResponse{
		Status:    "success",
		Symbol:    req.Symbol,
		Step:      pipeline.StepNews,
		ItemCount: len(articles),
	})
}

// FetchSocial handles POST /api/v1/predict/social
func (h *PredictHandler) FetchSocial(c *gin.Context) {
	req, ok := bindStepRequest(c)
	if !ok {
		return
	}

	social := h.pipeline.FetchSocial(stepContext(c), req.Symbol, h.clock())

	c.JSON(http.StatusOK, StepResponse{
		Status:    "success",
		Symbol:    req.Symbol,
		Step:      pipeline.StepSocial,
		ItemCount: len(social.Posts),
	})
}

// GenerateResult handles POST /api/v1/predict/result. It requires the three
// fetch steps to have run recently enough that their data is still cached.
func (h *PredictHandler) GenerateResult(c *gin.Context) {
	req, ok := bindStepRequest(c)
	if !ok {
		return
	}

	now := h.clock()
	result, err := h.pipeline.GenerateResult(stepContext(c), req.Symbol, llm.NextDayQuery(req.Symbol, now), now)
	if err != nil {
		if errors.Is(err, pipeline.ErrMissingStep) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: ErrorDetail{Code: codeMissingStep, Message: err.Error()},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: codePredictionError, Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, PredictionResponse{Status: "success", Result: result})
}

// Predict handles POST /api/v1/predict, running all steps in one call
func (h *PredictHandler) Predict(c *gin.Context) {
	req, ok := bindStepRequest(c)
	if !ok {
		return
	}

	now := h.clock()
	result, err := h.pipeline.Predict(stepContext(c), req.Symbol, llm.NextDayQuery(req.Symbol, now), now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: codePredictionError, Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, PredictionResponse{Status: "success", Result: result})
}
