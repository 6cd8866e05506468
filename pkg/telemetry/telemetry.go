// Package telemetry provides env-gated OpenTelemetry tracing for the
// analysis pipeline and the repository layer.
//
// Environment variables:
//
//	OTEL_ENABLED                - enable tracing (default: false)
//	OTEL_SERVICE_NAME           - service name (default: ctree-analysis)
//	OTEL_EXPORTER_OTLP_ENDPOINT - OTLP collector endpoint
//	OTEL_EXPORTER_OTLP_PROTOCOL - grpc or http/protobuf (default: grpc)
//	OTEL_EXPORTER_OTLP_HEADERS  - "key=value,..." headers
//	OTEL_EXPORTER_OTLP_INSECURE - use an insecure connection
//	OTEL_TRACES_SAMPLER_ARG     - trace-id ratio; empty samples everything
package telemetry

import (
	"context"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

var (
	globalConfig *Config
	configOnce   sync.Once
)

// ShutdownFunc flushes and stops the TracerProvider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(_ context.Context) error { return nil }

// Init sets up the global TracerProvider from the environment. With
// OTEL_ENABLED unset it is a no-op and the default no-op provider stays in
// place. The environment is read once, on the first call; every call with
// tracing enabled builds and installs a new TracerProvider.
func Init(ctx context.Context) (ShutdownFunc, error) {
	cfg := loadConfig()
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
		),
	)
	if err != nil {
		return noopShutdown, err
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	tp := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter),
		trace.WithSampler(createSampler(cfg)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		return tp.Shutdown(ctx)
	}, nil
}

// Enabled reports whether tracing is enabled.
func Enabled() bool {
	return loadConfig().Enabled
}

// createSampler builds the sampler: trace-id ratio when a ratio is
// configured, full sampling otherwise.
func createSampler(cfg *Config) trace.Sampler {
	if cfg.SamplerArg != "" {
		if ratio, err := strconv.ParseFloat(cfg.SamplerArg, 64); err == nil {
			return trace.ParentBased(trace.TraceIDRatioBased(ratio))
		}
	}
	return trace.AlwaysSample()
}

func loadConfig() *Config {
	configOnce.Do(func() {
		globalConfig = LoadFromEnv()
	})
	return globalConfig
}
