package observe

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// CommandKey is the resource attribute naming the CLI command of a run.
const CommandKey = attribute.Key("dubber.command")

// ProviderConfig configures the OpenTelemetry SDK providers for one run.
type ProviderConfig struct {
	// ServiceName is the service name reported in telemetry. Default: "dubber".
	ServiceName string

	// ServiceVersion is the service version reported in telemetry.
	ServiceVersion string

	// RunID becomes the service.instance.id resource attribute. With
	// Prometheus enabled it is also a constant label on every series, so
	// scrapes of successive runs stay apart.
	RunID string

	// Command is the CLI command being run ("compose", "dub", ...).
	Command string

	// Prometheus enables the Prometheus exporter on a registry private to
	// this run, exposed as [Telemetry.Gatherer].
	Prometheus bool

	// MetricReaders are extra readers attached to the meter provider.
	MetricReaders []sdkmetric.Reader

	// TraceExporter is an optional span exporter. When nil, spans are
	// recorded but not exported.
	TraceExporter sdktrace.SpanExporter
}

// Telemetry holds the SDK providers installed by [InitProvider].
type Telemetry struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider

	// Gatherer serves the run's metrics to promhttp. Nil unless
	// [ProviderConfig.Prometheus] is set.
	Gatherer prometheus.Gatherer
}

// InitProvider builds the meter and tracer providers for one run and installs
// them as the global OTel providers. The resource describes the process
// (PID, executable, host) alongside the service, run ID and command, since a
// run is one short-lived process. A run with neither Prometheus nor extra
// readers still records metrics, they are simply never exported.
func InitProvider(ctx context.Context, cfg ProviderConfig) (*Telemetry, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "dubber"
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}
	if cfg.RunID != "" {
		attrs = append(attrs, semconv.ServiceInstanceID(cfg.RunID))
	}
	if cfg.Command != "" {
		attrs = append(attrs, CommandKey.String(cfg.Command))
	}
	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithProcessPID(),
		resource.WithProcessExecutableName(),
		resource.WithProcessRuntimeVersion(),
		resource.WithHost(),
		resource.WithAttributes(attrs...),
	)
	if err != nil && !errors.Is(err, resource.ErrPartialResource) {
		return nil, err
	}

	tel := &Telemetry{}
	mpOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range cfg.MetricReaders {
		mpOpts = append(mpOpts, sdkmetric.WithReader(r))
	}
	if cfg.Prometheus {
		reg := prometheus.NewRegistry()
		exp, err := promexporter.New(
			promexporter.WithRegisterer(reg),
			promexporter.WithResourceAsConstantLabels(
				attribute.NewAllowKeysFilter(semconv.ServiceInstanceIDKey, CommandKey),
			),
		)
		if err != nil {
			return nil, err
		}
		mpOpts = append(mpOpts, sdkmetric.WithReader(exp))
		tel.Gatherer = reg
	}
	tel.MeterProvider = sdkmetric.NewMeterProvider(mpOpts...)
	otel.SetMeterProvider(tel.MeterProvider)

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.TraceExporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(cfg.TraceExporter))
	}
	tel.TracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tel.TracerProvider)

	return tel, nil
}

// Shutdown flushes and closes both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.MeterProvider.Shutdown(ctx),
		t.TracerProvider.Shutdown(ctx),
	)
}
