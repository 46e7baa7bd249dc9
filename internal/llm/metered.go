package llm

import (
	"context"
	"time"

	"github.com/capitalize-ai/assistant-intelligence/pkg/metrics"
)

// Metered wraps a Client and records per-call duration, token and cost
// metrics. Cost uses the configured dollars-per-1K-token rate for the variant.
type Metered struct {
	inner       Client
	primaryRate float64
	liteRate    float64
}

// NewMetered wraps a client with metrics instrumentation.
func NewMetered(inner Client, primaryRate, liteRate float64) *Metered {
	return &Metered{inner: inner, primaryRate: primaryRate, liteRate: liteRate}
}

// Complete delegates to the wrapped client and records the outcome.
func (m *Metered) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	operation := req.Operation
	if operation == "" {
		operation = "completion"
	}
	variant := string(req.Variant)

	resp, err := m.inner.Complete(ctx, req)
	if err != nil {
		metrics.RecordCompletion(variant, operation, "error", time.Since(start).Seconds(), 0, 0, 0)
		return nil, err
	}

	rate := m.primaryRate
	if req.Variant == VariantLite {
		rate = m.liteRate
	}
	cost := float64(resp.TokensIn+resp.TokensOut) / 1000 * rate

	metrics.RecordCompletion(variant, operation, "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut, cost)
	return resp, nil
}

// Name returns the wrapped provider name.
func (m *Metered) Name() string { return m.inner.Name() }

// ModelFor returns the wrapped provider's model for a variant.
func (m *Metered) ModelFor(v Variant) string { return m.inner.ModelFor(v) }
