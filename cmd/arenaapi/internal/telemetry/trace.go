package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan creates a new span for a service operation.
//
// Usage in services:
//
//	ctx, span := telemetry.StartSpan(ctx, "arenaapi/services/generation", "generation.Generate",
//	    attribute.String(telemetry.AttrPromptSource, "catalog"),
//	)
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError records an error on the span and sets the span status to error.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// Common attribute keys for arena spans
const (
	AttrUserID        = "user.id"
	AttrEffectiveRole = "access.role"
	AttrAccessPhase   = "access.phase"
	AttrGuardOutcome  = "access.outcome"

	AttrPromptSource = "generation.prompt_source"
	AttrPromptID     = "generation.prompt_id"
)
