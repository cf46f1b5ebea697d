package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"telcoclean/internal/cleaning"
	"telcoclean/internal/infrastructure"
)

const (
	TracerName = "telcoclean.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.CleaningMetrics
}

// NewOperationTracer creates a tracer from the providers. A nil providers
// yields a no-op tracer without metrics.
func NewOperationTracer(providers *infrastructure.OTelProviders, metrics *infrastructure.CleaningMetrics) *OperationTracer {
	var tracer trace.Tracer = tracenoop.NewTracerProvider().Tracer(TracerName)
	if providers != nil && providers.Tracer != nil {
		tracer = providers.Tracer
	}
	return &OperationTracer{tracer: tracer, metrics: metrics}
}

// TraceOperationExecution creates a span for the entire run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("trace_id", infrastructure.GetTraceID(ctx)),
		),
	)
}

// TraceStageExecution creates a span for one step
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stageID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.step."+stageID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stageID),
		),
	)
}

// RecordStageCompletion closes out a step span and records its duration
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stageID string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	if err != nil {
		infrastructure.RecordError(ctx, err, trace.WithAttributes(attribute.String("step.id", stageID)))
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}
	pt.metrics.RecordStage(ctx, stageID, duration)
}

// RecordOperationCompletion closes out the run span and flushes the
// correction counts into metrics
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, duration time.Duration, corrections *cleaning.Corrections, err error) {
	span.SetAttributes(
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
		attribute.Int("operation.corrections", corrections.Total()),
	)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	} else {
		span.SetStatus(codes.Ok, "operation completed")
	}

	for _, c := range corrections.List() {
		pt.metrics.RecordCorrection(ctx, c.Rule, c.Count)
	}
	pt.metrics.RecordRun(ctx, duration, err)
}
