package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumWhere returns the counter value of the data point carrying key=value.
func sumWhere(t *testing.T, met *metricdata.Metrics, key, value string) (int64, bool) {
	t.Helper()
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not a sum", met.Name)
	}
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			return dp.Value, true
		}
	}
	return 0, false
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestHistogramObservation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	histograms := []struct {
		name string
		h    metric.Float64Histogram
	}{
		{"dubber.slot.speed_factor", m.SlotSpeedFactor},
		{"dubber.slot.render.duration", m.SlotRenderDuration},
		{"dubber.compose.duration", m.ComposeDuration},
		{"dubber.stt.duration", m.STTDuration},
		{"dubber.translate.duration", m.TranslateDuration},
		{"dubber.tts.duration", m.TTSDuration},
		{"dubber.summarize.duration", m.SummarizeDuration},
	}

	for _, tc := range histograms {
		tc.h.Record(ctx, 0.9)
		tc.h.Record(ctx, 1.1)
	}

	rm := collect(t, reader)

	for _, tc := range histograms {
		t.Run(tc.name, func(t *testing.T) {
			met := findMetric(rm, tc.name)
			if met == nil {
				t.Fatalf("metric %q not found", tc.name)
			}
			hist, ok := met.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("metric %q is not a histogram", tc.name)
			}
			if len(hist.DataPoints) == 0 {
				t.Fatalf("metric %q has no data points", tc.name)
			}
			if got := hist.DataPoints[0].Count; got != 2 {
				t.Errorf("sample count = %d, want 2", got)
			}
		})
	}
}

func TestRecordSlot(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSlot(ctx, "speech", "truncated")
	m.RecordSlot(ctx, "speech", "truncated")
	m.RecordSlot(ctx, "speech", "padded")
	m.RecordSlot(ctx, "non_speech", "verbatim")

	met := findMetric(collect(t, reader), "dubber.slot.renders")
	if met == nil {
		t.Fatal("metric not found")
	}
	if got, ok := sumWhere(t, met, "outcome", "truncated"); !ok || got != 2 {
		t.Errorf("truncated = %d (found %v), want 2", got, ok)
	}
	if got, ok := sumWhere(t, met, "outcome", "verbatim"); !ok || got != 1 {
		t.Errorf("verbatim = %d (found %v), want 1", got, ok)
	}
}

func TestRecordProviderRequest(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordProviderRequest(ctx, "elevenlabs", "tts", "ok")
	m.RecordProviderRequest(ctx, "elevenlabs", "tts", "ok")
	m.RecordProviderRequest(ctx, "elevenlabs", "tts", "error")

	met := findMetric(collect(t, reader), "dubber.provider.requests")
	if met == nil {
		t.Fatal("metric not found")
	}
	if got, ok := sumWhere(t, met, "status", "ok"); !ok || got != 2 {
		t.Errorf("status=ok = %d (found %v), want 2", got, ok)
	}
}

func TestRecordProviderError(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordProviderError(context.Background(), "openai", "translate")

	met := findMetric(collect(t, reader), "dubber.provider.errors")
	if met == nil {
		t.Fatal("metric not found")
	}
	if got, ok := sumWhere(t, met, "kind", "translate"); !ok || got != 1 {
		t.Errorf("kind=translate = %d (found %v), want 1", got, ok)
	}
}

func TestCursorExhaustedCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.CursorExhausted.Add(context.Background(), 3)

	met := findMetric(collect(t, reader), "dubber.cursor.exhausted")
	if met == nil {
		t.Fatal("metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) == 0 {
		t.Fatal("metric is not a sum with data")
	}
	if sum.DataPoints[0].Value != 3 {
		t.Errorf("counter value = %d, want 3", sum.DataPoints[0].Value)
	}
}

func TestDefaultMetrics_ReturnsSameInstance(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Error("DefaultMetrics returned different pointers")
	}
}
