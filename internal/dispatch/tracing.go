package dispatch

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cortexai/roster/internal/llm"
)

var tracer = otel.Tracer("github.com/cortexai/roster/internal/dispatch")

func startToolSpan(ctx context.Context, call llm.ToolCall) (context.Context, trace.Span) {
	return tracer.Start(ctx, "roster.tool", trace.WithAttributes(
		attribute.String("gen_ai.operation.name", "execute_tool"),
		attribute.String("gen_ai.tool.call.id", call.ID),
		attribute.String("gen_ai.tool.name", call.Name),
		attribute.String("gen_ai.tool.type", "function"),
	))
}

// endToolSpan marks invocation failures as span errors. Domain statuses
// such as not_found are successful executions.
func endToolSpan(span trace.Span, out Outcome, err error) {
	span.SetAttributes(attribute.String("roster.tool.status", out.Status()))
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case out.Failure != nil:
		span.SetStatus(codes.Error, out.Failure.Message)
	}
	span.End()
}
