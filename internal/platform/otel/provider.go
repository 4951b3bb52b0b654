// Package otel configures OpenTelemetry tracing for rowedex processes.
package otel

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/rowedex/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type settings struct {
	Endpoint    string  `env:"ROWEDEX_OTEL_ENDPOINT"`
	Enabled     string  `env:"ROWEDEX_OTEL_ENABLED"`
	SampleRatio float64 `env:"ROWEDEX_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when ROWEDEX_OTEL_ENDPOINT is empty or
// ROWEDEX_OTEL_ENABLED is "false", Setup returns a no-op shutdown
// function and no global provider is registered. Spans started through
// otel.Tracer still work and are simply dropped.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	cfg, err := config.Load[settings]()
	if err != nil {
		return noop, err
	}
	if strings.EqualFold(cfg.Enabled, "false") || strings.TrimSpace(cfg.Endpoint) == "" {
		return noop, nil
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		return noop, fmt.Errorf("otel sample ratio %v must be within [0, 1]", cfg.SampleRatio)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.Endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
