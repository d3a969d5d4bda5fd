package agent

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Resolved lazily so callers can install a tracer provider first.
var tracer = otel.Tracer("github.com/cortexai/roster/internal/agent")

type turnSpan struct {
	span trace.Span
}

func startTurnSpan(ctx context.Context, sessionID string) (context.Context, turnSpan) {
	ctx, span := tracer.Start(ctx, "roster.turn", trace.WithAttributes(
		attribute.String("gen_ai.operation.name", "invoke_agent"),
		attribute.String("roster.session.id", sessionID),
	))
	return ctx, turnSpan{span: span}
}

func (s turnSpan) end(res *TurnResult) {
	s.span.SetAttributes(
		attribute.Int("roster.turn.iterations", res.Iterations),
		attribute.StringSlice("roster.turn.tools_used", res.ToolsUsed),
	)
	s.span.End()
}

func (s turnSpan) fail(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
	s.span.End()
}
