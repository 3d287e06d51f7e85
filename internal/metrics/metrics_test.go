package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordPredictionGenerated(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordPredictionGenerated()
	})
}

func TestRecordLLMRequest(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordLLMRequest("success", 1.2)
		RecordLLMRequest("failure", 0.1)
	})
}

func TestRecordPipelineStep(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name   string
		step   string
		status string
	}{
		{
			name:   "historical success",
			step:   "historical",
			status: "success",
		},
		{
			name:   "news cached",
			step:   "news",
			status: "cached",
		},
		{
			name:   "result failure",
			step:   "result",
			status: "failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordPipelineStep(tt.step, tt.status, 0.5)
			})
		})
	}
}

func TestRecordBacktestSymbol(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordBacktestSymbol("success")
		RecordBacktestSymbol("error")
	})
}

func TestUpdateBacktestSummary(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name     string
		accuracy float64
		avgError float64
	}{
		{
			name:     "all correct",
			accuracy: 1.0,
			avgError: 0.5,
		},
		{
			name:     "none correct",
			accuracy: 0,
			avgError: 12.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateBacktestSummary(tt.accuracy, tt.avgError)
			})
		})
	}
}

func TestUpdateCacheHitRatio(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		UpdateCacheHitRatio(0.75)
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	handler := Handler()

	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}
