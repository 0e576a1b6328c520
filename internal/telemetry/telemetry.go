// Package telemetry provides the tracer the transport and controller use
// to span connect/disconnect/send operations. Grounded on vango's otel
// wiring: a tracer obtained once from the globally configured provider,
// used wherever a call is worth seeing in a trace. The default global
// provider is a no-op, so this costs nothing when the host application
// hasn't configured OpenTelemetry itself.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
)

const instrumentationName = "github.com/blynkgo/client"

var tracer = otel.Tracer(instrumentationName)

// StartSpan starts a span named name as a child of ctx, returning the new
// context and an end function. Callers defer the end function rather than
// holding onto the raw trace.Span, matching the pattern used throughout
// vango's request handling.
func StartSpan(ctx context.Context, name string) (context.Context, func(err error)) {
	ctx, span := tracer.Start(ctx, name)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
}
