// Package otel wires OpenTelemetry tracing for the clientdocs binaries.
package otel

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/ashmont/clientdocs/internal/platform/config"
)

// Namespace groups the portal, seed, and maintenance binaries under one
// service namespace so their traces land in the same backend view.
const Namespace = "clientdocs"

type exporterConfig struct {
	Endpoint string `env:"CLIENTDOCS_OTEL_ENDPOINT"`
	Enabled  string `env:"CLIENTDOCS_OTEL_ENABLED" envDefault:"true"`
}

func (c exporterConfig) exportDisabled() bool {
	return c.Endpoint == "" || strings.EqualFold(c.Enabled, "false")
}

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when CLIENTDOCS_OTEL_ENDPOINT is empty or
// CLIENTDOCS_OTEL_ENABLED is "false", Setup returns a no-op shutdown
// function and no global provider is registered.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	var cfg exporterConfig
	if err := config.ParseEnv(&cfg); err != nil {
		return noop, err
	}
	if cfg.exportDisabled() {
		return noop, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNamespace(Namespace),
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return noop, err
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}
