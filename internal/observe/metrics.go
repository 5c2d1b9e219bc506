// Package observe provides the observability primitives shared by the dubbing
// pipeline: OpenTelemetry metrics, tracing helpers and a trace-aware
// structured logger.
//
// Metrics are recorded through the OpenTelemetry Metrics API. [InitProvider]
// installs a Prometheus exporter bridge so a long dubbing run can be scraped
// on /metrics. A lazily created package-level [Metrics] instance
// ([DefaultMetrics]) is available for convenience; tests should use
// [NewMetrics] with their own [metric.MeterProvider].
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all dubber metrics.
const meterName = "github.com/cyprienbrisset/video-translate-to-text"

// Metrics holds all OpenTelemetry instruments for the application. All fields
// are safe for concurrent use.
type Metrics struct {
	// --- Engine ---

	// SlotRenders counts rendered slots. Use with attributes:
	//   attribute.String("kind", ...), attribute.String("outcome", ...)
	SlotRenders metric.Int64Counter

	// SlotSpeedFactor records the source/slot duration ratio of every Speech
	// segment, before any correction is applied.
	SlotSpeedFactor metric.Float64Histogram

	// SlotRenderDuration tracks the wall time spent fitting one clip to its
	// slot.
	SlotRenderDuration metric.Float64Histogram

	// ComposeDuration tracks the wall time of one full engine run.
	ComposeDuration metric.Float64Histogram

	// CursorExhausted counts Speech segments that ran past the end of a
	// continuous synthesis stream.
	CursorExhausted metric.Int64Counter

	// --- Providers ---

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// TranslateDuration tracks per-segment translation latency.
	TranslateDuration metric.Float64Histogram

	// TTSDuration tracks text-to-speech synthesis latency.
	TTSDuration metric.Float64Histogram

	// SummarizeDuration tracks transcript summarization latency. Use with
	// attribute.String("length", ...).
	SummarizeDuration metric.Float64Histogram

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries in seconds. Batch
// transcription of a long recording can take minutes, hence the long tail.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300,
}

// speedBuckets brackets the 0.8 to 1.2 stretch window so truncations and pads
// land in their own buckets.
var speedBuckets = []float64{
	0.25, 0.5, 0.7, 0.8, 0.9, 1.0, 1.1, 1.2, 1.4, 2, 4,
}

// NewMetrics creates a fully initialised [Metrics] struct using mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SlotRenders, err = m.Int64Counter("dubber.slot.renders",
		metric.WithDescription("Rendered slots by segment kind and render outcome."),
	); err != nil {
		return nil, err
	}
	if met.SlotSpeedFactor, err = m.Float64Histogram("dubber.slot.speed_factor",
		metric.WithDescription("Ratio of replacement clip duration to slot duration."),
		metric.WithExplicitBucketBoundaries(speedBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SlotRenderDuration, err = m.Float64Histogram("dubber.slot.render.duration",
		metric.WithDescription("Time spent fitting one clip to its slot."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ComposeDuration, err = m.Float64Histogram("dubber.compose.duration",
		metric.WithDescription("Time spent rendering and composing a full track."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CursorExhausted, err = m.Int64Counter("dubber.cursor.exhausted",
		metric.WithDescription("Speech segments that ran past the end of a continuous synthesis stream."),
	); err != nil {
		return nil, err
	}

	if met.STTDuration, err = m.Float64Histogram("dubber.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranslateDuration, err = m.Float64Histogram("dubber.translate.duration",
		metric.WithDescription("Latency of segment translation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("dubber.tts.duration",
		metric.WithDescription("Latency of text-to-speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SummarizeDuration, err = m.Float64Histogram("dubber.summarize.duration",
		metric.WithDescription("Latency of transcript summarization."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("dubber.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("dubber.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails, which does not happen with the global provider.
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

// Attr is a convenience alias for [attribute.String].
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordSlot records one rendered slot with its kind and outcome.
func (m *Metrics) RecordSlot(ctx context.Context, kind, outcome string) {
	m.SlotRenders.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordProviderRequest records a provider request with the standard
// attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
