package operations

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	TracerName = "valuationcli.operation"
)

// OperationTracer provides OpenTelemetry spans for operations and steps
type OperationTracer struct {
	tracer trace.Tracer
}

// NewOperationTracer wraps tracer, falling back to the global provider
func NewOperationTracer(tracer trace.Tracer) *OperationTracer {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &OperationTracer{tracer: tracer}
}

// TraceOperationExecution creates a span for the entire operation execution
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, req OperationRequest) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("operation.execute.%s", req.Variant)
	return pt.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("operation.variant", req.Variant),
		),
	)
}

// TraceStepExecution creates a span for one step
func (pt *OperationTracer) TraceStepExecution(ctx context.Context, operationID string, step Step) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("operation.step.%s", step.ID())
	return pt.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// RecordResult sets the span status from err. The caller ends the span.
func (pt *OperationTracer) RecordResult(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.type", string(GetErrorType(err))))
		return
	}
	span.SetStatus(codes.Ok, "")
}
