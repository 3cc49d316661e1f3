// Package tracing provides OpenTelemetry tracing for the notification engine.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the notification engine.
var tracer = otel.Tracer("tripnotify")

// GetTracer returns the global tracer for creating spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "dispatch-notification")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// InitTracerProvider installs a batching SDK tracer provider as the global
// provider and returns a shutdown function to flush pending spans. Exporters
// are configured through the standard OTEL_* environment variables; with no
// exporter configured spans are dropped, which is the correct default for
// local development.
func InitTracerProvider(ctx context.Context) (func(context.Context) error, error) {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown tracer provider: %w", err)
		}
		return nil
	}, nil
}
