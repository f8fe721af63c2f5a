// Package tracing wires OpenTelemetry spans around the graph-resolution,
// plan-compile, and execute phases of a build, exporting via OTLP/gRPC when
// enabled.
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config controls whether and where trace/metric spans are exported.
type Config struct {
	Endpoint       string
	ServiceName    string
	ServiceVersion string
}

// Providers holds the initialized OTel providers so the caller can shut
// them down on exit.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
}

// Init connects to cfg.Endpoint and installs the global tracer/meter
// providers. Returns nil, nil when cfg.Endpoint is empty (tracing disabled).
func Init(ctx context.Context, cfg Config) (*Providers, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	dialOpts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}

	traceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	traceExporter, err := otlptracegrpc.New(traceCtx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithDialOption(dialOpts...),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
	)

	metricCtx, cancel2 := context.WithTimeout(ctx, 10*time.Second)
	defer cancel2()
	metricExporter, err := otlpmetricgrpc.New(metricCtx,
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithDialOption(dialOpts...),
	)
	if err != nil {
		tp.Shutdown(ctx)
		return nil, fmt.Errorf("tracing: metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(10*time.Second))),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return &Providers{
		TracerProvider: tp,
		MeterProvider:  mp,
		Tracer:         tp.Tracer("github.com/yldrefruz/ebuild"),
	}, nil
}

// Shutdown flushes and stops both providers, tolerating a nil receiver so
// callers can defer it unconditionally.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var err error
	if p.TracerProvider != nil {
		if e := p.TracerProvider.Shutdown(ctx); e != nil {
			err = e
		}
	}
	if p.MeterProvider != nil {
		if e := p.MeterProvider.Shutdown(ctx); e != nil {
			err = e
		}
	}
	return err
}

// StartSpan starts a span named name, tolerating a nil Providers (tracing
// disabled) by returning the context unchanged and a no-op span.
func (p *Providers) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if p == nil || p.Tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.Tracer.Start(ctx, name)
}
