// Package observe provides application-wide observability for LemmeTalk:
// OpenTelemetry metrics, tracing helpers, and trace-aware structured
// logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so metrics can be scraped
// from the standard /metrics endpoint. A package-level default [Metrics]
// instance ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all LemmeTalk metrics.
const meterName = "github.com/hemanthsagarb9/LemmeTalk"

// Metrics holds all OpenTelemetry metric instruments for the assistant.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per turn stage ---

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// ClassifyDuration tracks router classification latency.
	ClassifyDuration metric.Float64Histogram

	// WorkflowDuration tracks workflow execution latency.
	WorkflowDuration metric.Float64Histogram

	// SpeakDuration tracks speech synthesis and playback latency.
	SpeakDuration metric.Float64Histogram

	// TurnDuration tracks end-to-end turn latency, utterance in to reply
	// spoken.
	TurnDuration metric.Float64Histogram

	// --- Counters ---

	// RouterDecisions counts routing decisions. Use with attributes:
	//   attribute.String("workflow", ...), attribute.String("method", ...)
	RouterDecisions metric.Int64Counter

	// WorkflowRuns counts workflow executions. Use with attributes:
	//   attribute.String("workflow", ...), attribute.String("status", ...)
	WorkflowRuns metric.Int64Counter

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// EmptyTranscriptions counts turns where the recognizer heard nothing.
	EmptyTranscriptions metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// voice-turn latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.STTDuration, err = m.Float64Histogram("lemmetalk.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClassifyDuration, err = m.Float64Histogram("lemmetalk.classify.duration",
		metric.WithDescription("Latency of router classification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.WorkflowDuration, err = m.Float64Histogram("lemmetalk.workflow.duration",
		metric.WithDescription("Latency of workflow execution."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SpeakDuration, err = m.Float64Histogram("lemmetalk.speak.duration",
		metric.WithDescription("Latency of speech synthesis and playback."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TurnDuration, err = m.Float64Histogram("lemmetalk.turn.duration",
		metric.WithDescription("End-to-end turn latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.RouterDecisions, err = m.Int64Counter("lemmetalk.router.decisions",
		metric.WithDescription("Total routing decisions by workflow and method."),
	); err != nil {
		return nil, err
	}
	if met.WorkflowRuns, err = m.Int64Counter("lemmetalk.workflow.runs",
		metric.WithDescription("Total workflow executions by workflow and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("lemmetalk.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.EmptyTranscriptions, err = m.Int64Counter("lemmetalk.stt.empty",
		metric.WithDescription("Total turns with an empty transcription."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordRouterDecision increments the decision counter with the standard
// attribute set. A fallback decision is recorded as workflow "chat".
func (m *Metrics) RecordRouterDecision(ctx context.Context, workflow, method string) {
	if workflow == "" {
		workflow = "chat"
	}
	m.RouterDecisions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("workflow", workflow),
			attribute.String("method", method),
		),
	)
}

// RecordWorkflowRun increments the workflow run counter.
func (m *Metrics) RecordWorkflowRun(ctx context.Context, workflow string, succeeded bool) {
	status := "ok"
	if !succeeded {
		status = "error"
	}
	m.WorkflowRuns.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("workflow", workflow),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError increments the provider error counter.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
