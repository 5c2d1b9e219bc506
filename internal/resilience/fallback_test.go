package resilience

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/cyprienbrisset/video-translate-to-text/internal/observe"
)

type stub struct {
	name  string
	err   error
	calls int
}

func (s *stub) call(context.Context) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.name, nil
}

func newGroup(cfg FallbackConfig, stubs ...*stub) *FallbackGroup[*stub] {
	fg := NewFallbackGroup(stubs[0], stubs[0].name, cfg)
	for _, s := range stubs[1:] {
		fg.AddFallback(s.name, s)
	}
	return fg
}

func callStub(ctx context.Context, s *stub) (string, error) { return s.call(ctx) }

func TestFallbackGroup_PrimarySuccess(t *testing.T) {
	a, b := &stub{name: "a"}, &stub{name: "b"}
	fg := newGroup(FallbackConfig{}, a, b)

	got, err := Do(context.Background(), fg, callStub)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "a" || b.calls != 0 {
		t.Fatalf("got %q with %d fallback calls, want a with 0", got, b.calls)
	}
	if names := fg.Names(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names = %v", names)
	}
}

func TestFallbackGroup_Failover(t *testing.T) {
	a, b := &stub{name: "a", err: errTest}, &stub{name: "b"}
	fg := newGroup(FallbackConfig{}, a, b)

	got, err := Do(context.Background(), fg, callStub)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "b" {
		t.Fatalf("got %q, want b", got)
	}
}

func TestFallbackGroup_AllFailed(t *testing.T) {
	errA, errB := errors.New("a down"), errors.New("b down")
	fg := newGroup(FallbackConfig{}, &stub{name: "a", err: errA}, &stub{name: "b", err: errB})

	err := fg.Execute(context.Background(), func(ctx context.Context, s *stub) error {
		_, err := s.call(ctx)
		return err
	})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("err = %v, want both backend errors joined", err)
	}
	if !strings.Contains(err.Error(), "a: a down") {
		t.Errorf("err = %q, want entry names", err)
	}
}

func TestFallbackGroup_SkipsOpenBreaker(t *testing.T) {
	a, b := &stub{name: "a", err: errTest}, &stub{name: "b"}
	fg := newGroup(FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour},
	}, a, b)
	ctx := context.Background()

	for range 3 {
		if _, err := Do(ctx, fg, callStub); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	if a.calls != 1 {
		t.Fatalf("primary called %d times, want 1 (breaker open)", a.calls)
	}
	if b.calls != 3 {
		t.Fatalf("fallback called %d times, want 3", b.calls)
	}
}

func TestFallbackGroup_Ready(t *testing.T) {
	a, b := &stub{name: "a", err: errTest}, &stub{name: "b"}
	fg := newGroup(FallbackConfig{
		Kind:           "tts",
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour},
	}, a, b)
	ctx := context.Background()

	if err := fg.Ready(); err != nil {
		t.Fatalf("fresh group Ready = %v, want nil", err)
	}

	// The first call opens a; b then fails on the second call and opens too.
	_, _ = Do(ctx, fg, callStub)
	if err := fg.Ready(); err != nil {
		t.Fatalf("Ready after one call = %v, want nil while b is closed", err)
	}
	b.err = errTest
	_, _ = Do(ctx, fg, callStub)

	err := fg.Ready()
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Ready = %v, want ErrCircuitOpen", err)
	}
	if !strings.Contains(err.Error(), "tts") || !strings.Contains(err.Error(), "b") {
		t.Errorf("Ready error should name the kind and entries, got %q", err)
	}
}

func TestFallbackGroup_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &stub{name: "a"}
	b := &stub{name: "b"}
	fg := newGroup(FallbackConfig{}, a, b)

	_, err := Do(ctx, fg, func(ctx context.Context, s *stub) (string, error) {
		s.calls++
		cancel()
		return "", ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if b.calls != 0 {
		t.Fatalf("fallback called %d times after cancellation", b.calls)
	}
	if fg.entries[0].breaker.consecutiveFail != 0 {
		t.Fatal("cancellation counted against primary")
	}
}

func TestFallbackGroup_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := observe.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	fg := newGroup(FallbackConfig{Kind: "translate", Metrics: m},
		&stub{name: "a", err: errTest}, &stub{name: "b"})
	if _, err := Do(context.Background(), fg, callStub); err != nil {
		t.Fatalf("Do: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	requests := map[string]int64{}
	var errorsTotal int64
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				provider, _ := dp.Attributes.Value(attribute.Key("provider"))
				switch met.Name {
				case "dubber.provider.requests":
					status, _ := dp.Attributes.Value(attribute.Key("status"))
					requests[provider.AsString()+"/"+status.AsString()] += dp.Value
				case "dubber.provider.errors":
					errorsTotal += dp.Value
				}
			}
		}
	}
	if requests["a/error"] != 1 || requests["b/ok"] != 1 {
		t.Errorf("requests = %v, want a/error=1 b/ok=1", requests)
	}
	if errorsTotal != 1 {
		t.Errorf("errors = %d, want 1", errorsTotal)
	}
}
