// Package metrics defines prediction pipeline metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline counter vectors
var (
	PipelineStepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockcast",
		Name:      "pipeline_steps_total",
		Help:      "Total number of pipeline step executions by step and status",
	}, []string{"step", "status"})

	PipelineCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockcast",
		Name:      "pipeline_cache_lookups_total",
		Help:      "Total number of pipeline cache lookups by outcome",
	}, []string{"outcome"})
)

// Pipeline histogram vectors
var (
	PipelineStepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stockcast",
		Name:      "pipeline_step_duration_seconds",
		Help:      "Duration of pipeline steps in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"step"})
)

// RecordPipelineStep records a pipeline step execution.
// step should be one of: "historical", "news", "social", "result"
// status should be one of: "success", "failure", "cached"
func RecordPipelineStep(step, status string, durationSeconds float64) {
	PipelineStepsTotal.WithLabelValues(step, status).Inc()
	PipelineStepDuration.WithLabelValues(step).Observe(durationSeconds)
}

// RecordCacheLookup records a pipeline cache lookup outcome.
// outcome should be one of: "hit", "miss"
func RecordCacheLookup(outcome string) {
	PipelineCacheLookupsTotal.WithLabelValues(outcome).Inc()
}
