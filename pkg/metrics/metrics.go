// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// CompletionDuration tracks completion-call duration per model variant.
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "LLM completion call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"variant", "operation", "status"},
	)

	// CompletionTokensTotal tracks tokens processed per model variant.
	CompletionTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_completion_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"variant", "direction"},
	)

	// CompletionCostTotal tracks estimated completion cost in dollars.
	CompletionCostTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_completion_cost_dollars_total",
			Help: "Estimated LLM cost in dollars",
		},
		[]string{"variant"},
	)

	// PipelineStageDuration tracks duration of each intelligence stage.
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intelligence_stage_duration_seconds",
			Help:    "Intelligence pipeline stage duration",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2, 5, 10},
		},
		[]string{"stage"},
	)

	// FallbacksTotal counts degraded paths taken when a completion call or
	// parse fails and a component substitutes its deterministic fallback.
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intelligence_fallbacks_total",
			Help: "Fallback substitutions by component and reason",
		},
		[]string{"component", "reason"},
	)

	// PatternsActive tracks the pattern count persisted per session write.
	PatternsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversation_patterns_active",
			Help: "Patterns persisted in the last snapshot write",
		},
	)

	// SessionsTotal tracks total sessions created.
	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_total",
			Help: "Total sessions created",
		},
		[]string{"tenant_id"},
	)

	// MessagesTotal tracks total messages processed.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages processed",
		},
		[]string{"tenant_id", "role"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordCompletion records metrics for one completion call.
func RecordCompletion(variant, operation, status string, duration float64, tokensIn, tokensOut int, cost float64) {
	CompletionDuration.WithLabelValues(variant, operation, status).Observe(duration)
	CompletionTokensTotal.WithLabelValues(variant, "in").Add(float64(tokensIn))
	CompletionTokensTotal.WithLabelValues(variant, "out").Add(float64(tokensOut))
	CompletionCostTotal.WithLabelValues(variant).Add(cost)
}

// RecordFallback records a degraded-path substitution.
func RecordFallback(component, reason string) {
	FallbacksTotal.WithLabelValues(component, reason).Inc()
}
