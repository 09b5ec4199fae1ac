// Package observability wires OpenTelemetry tracing and metrics around the
// publish pipeline. Disabled by default: the zero-value provider is a no-op
// so callers never branch on whether telemetry is on.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/config"
)

const instrumentationName = "blogpub"

// TelemetryProvider exports spans and metrics for publish operations.
type TelemetryProvider struct {
	config        *config.TelemetryConfig
	tracer        trace.Tracer
	meter         metric.Meter
	traceProvider *sdktrace.TracerProvider

	publishesSucceeded metric.Int64Counter
	publishesFailed    metric.Int64Counter
	duplicatesBlocked  metric.Int64Counter
	publishDuration    metric.Float64Histogram
}

// NewTelemetryProvider creates a provider. A nil or disabled config yields
// a no-op provider that still satisfies every method.
func NewTelemetryProvider(cfg *config.TelemetryConfig) (*TelemetryProvider, error) {
	if cfg == nil {
		cfg = &config.TelemetryConfig{Enabled: false}
	}

	tp := &TelemetryProvider{config: cfg}

	if !cfg.Enabled {
		tp.tracer = otel.Tracer(instrumentationName)
		tp.meter = otel.Meter(instrumentationName)
		return tp, nil
	}

	if err := tp.initTracing(); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	if err := tp.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return tp, nil
}

func (tp *TelemetryProvider) initTracing() error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(tp.config.ServiceName),
			semconv.ServiceVersion(tp.config.ServiceVersion),
			semconv.DeploymentEnvironment(tp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptrace.New(context.Background(),
		otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(tp.config.OTLPEndpoint),
		),
	)
	if err != nil {
		return fmt.Errorf("create exporter: %w", err)
	}

	sampleRate := tp.config.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	tp.traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(sampleRate)),
	)

	otel.SetTracerProvider(tp.traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	tp.tracer = otel.Tracer(instrumentationName,
		trace.WithSchemaURL(semconv.SchemaURL),
	)
	return nil
}

func (tp *TelemetryProvider) initMetrics() error {
	tp.meter = otel.Meter(instrumentationName,
		metric.WithSchemaURL(semconv.SchemaURL),
	)

	var err error

	tp.publishesSucceeded, err = tp.meter.Int64Counter(
		"blogpub_publishes_succeeded_total",
		metric.WithDescription("Total number of successful publishes"),
	)
	if err != nil {
		return fmt.Errorf("create publishes_succeeded counter: %w", err)
	}

	tp.publishesFailed, err = tp.meter.Int64Counter(
		"blogpub_publishes_failed_total",
		metric.WithDescription("Total number of failed publishes"),
	)
	if err != nil {
		return fmt.Errorf("create publishes_failed counter: %w", err)
	}

	tp.duplicatesBlocked, err = tp.meter.Int64Counter(
		"blogpub_duplicates_blocked_total",
		metric.WithDescription("Total number of publishes stopped by the duplicate guard"),
	)
	if err != nil {
		return fmt.Errorf("create duplicates_blocked counter: %w", err)
	}

	tp.publishDuration, err = tp.meter.Float64Histogram(
		"blogpub_publish_duration_seconds",
		metric.WithDescription("End-to-end duration of publish operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create publish_duration histogram: %w", err)
	}

	return nil
}

// TracePublish starts a span covering one publish pipeline run.
func (tp *TelemetryProvider) TracePublish(ctx context.Context, platform, title string) (context.Context, trace.Span) {
	if tp.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tp.tracer.Start(ctx, "blogpub.publish",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("blogpub.platform", platform),
			attribute.String("blogpub.post.title", title),
		),
	)
}

// RecordPublish records the outcome of one publish.
func (tp *TelemetryProvider) RecordPublish(ctx context.Context, platform, method string, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("platform", platform),
		attribute.String("method", method),
	)
	if success {
		if tp.publishesSucceeded != nil {
			tp.publishesSucceeded.Add(ctx, 1, attrs)
		}
	} else if tp.publishesFailed != nil {
		tp.publishesFailed.Add(ctx, 1, attrs)
	}
	if tp.publishDuration != nil {
		tp.publishDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// RecordDuplicateBlocked counts a publish stopped by the duplicate guard.
func (tp *TelemetryProvider) RecordDuplicateBlocked(ctx context.Context, platform string) {
	if tp.duplicatesBlocked != nil {
		tp.duplicatesBlocked.Add(ctx, 1, metric.WithAttributes(
			attribute.String("platform", platform),
		))
	}
}

// SetSpanError records err on the span and marks it failed.
func (tp *TelemetryProvider) SetSpanError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks the span as successful.
func (tp *TelemetryProvider) SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// Shutdown flushes and stops the exporters.
func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	if tp.traceProvider != nil {
		return tp.traceProvider.Shutdown(ctx)
	}
	return nil
}
