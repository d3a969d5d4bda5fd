// Package dispatch resolves model tool invocations to handlers. It is the
// trust boundary for model-generated input: every malformed or failed
// invocation comes back as data in an Outcome.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cortexai/roster/internal/llm"
	"github.com/cortexai/roster/internal/security"
	"github.com/cortexai/roster/internal/store"
	"github.com/cortexai/roster/internal/tools"
)

type Dispatcher struct {
	catalog *tools.Catalog
	audit   *security.AuditLogger
}

type Option func(*Dispatcher)

// WithAudit records every dispatch through a.
func WithAudit(a *security.AuditLogger) Option {
	return func(d *Dispatcher) { d.audit = a }
}

func New(catalog *tools.Catalog, opts ...Option) *Dispatcher {
	d := &Dispatcher{catalog: catalog}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Catalog() *tools.Catalog {
	return d.catalog
}

// Dispatch runs call against st. The only error returned is a missing
// store; everything else is reported in the Outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, st *store.Context, call llm.ToolCall) (Outcome, error) {
	ctx, span := startToolSpan(ctx, call)
	start := time.Now()
	out, err := d.dispatch(ctx, st, call)
	elapsed := time.Since(start)
	endToolSpan(span, out, err)

	evt := log.Info()
	if err != nil {
		evt = log.Error().Err(err)
	} else if out.Failure != nil {
		evt = log.Warn()
	}
	evt.
		Str("event", "tool_exec").
		Str("session_id", SessionID(ctx)).
		Str("call_id", call.ID).
		Str("tool", call.Name).
		Str("status", out.Status()).
		Int64("duration_ms", elapsed.Milliseconds()).
		Int("input_size", len(call.Arguments)).
		Int("output_size", len(out.Content())).
		Msg("tool_exec")

	failure := ""
	if out.Failure != nil {
		failure = out.Failure.Message
	}
	d.audit.LogToolCall(security.ToolCallAudit{
		SessionID: SessionID(ctx),
		CallID:    call.ID,
		Tool:      call.Name,
		Arguments: call.Arguments,
		Status:    out.Status(),
		Failure:   failure,
		Duration:  elapsed,
	})
	return out, err
}

func (d *Dispatcher) dispatch(ctx context.Context, st *store.Context, call llm.ToolCall) (Outcome, error) {
	out := Outcome{CallID: call.ID, Tool: call.Name}

	// ParseArgs
	args, ok := parseArgs(call.Arguments)
	if !ok {
		out.Failure = &Failure{
			Kind:      MalformedArguments,
			Message:   "arguments are not a JSON object",
			Tool:      call.Name,
			Arguments: call.Arguments,
		}
		return out, nil
	}

	// Resolve
	tool, ok := d.catalog.Lookup(call.Name)
	if !ok {
		out.Failure = &Failure{
			Kind:    UnknownTool,
			Message: fmt.Sprintf("unknown tool: %s", call.Name),
			Tool:    call.Name,
		}
		return out, nil
	}

	// Execute
	res, err := execute(ctx, tool, st, args)
	var argErr *tools.ArgumentError
	switch {
	case err == nil:
		out.Result = res
	case errors.Is(err, store.ErrNoStore):
		return out, err
	case errors.As(err, &argErr):
		out.Failure = &Failure{Kind: InvalidArguments, Message: argErr.Error(), Tool: call.Name}
	default:
		out.Failure = &Failure{Kind: HandlerFailure, Message: err.Error(), Tool: call.Name}
	}
	return out, nil
}

// parseArgs accepts only a JSON object; null, arrays, scalars and empty
// payloads are malformed.
func parseArgs(raw string) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace([]byte(raw))
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil || obj == nil {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}

func execute(ctx context.Context, tool tools.Tool, st *store.Context, args json.RawMessage) (res *tools.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("tool", string(tool.Name)).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			res, err = nil, fmt.Errorf("handler panicked: %v", r)
		}
	}()
	res, err = tool.Execute(ctx, st, args)
	if err == nil && res == nil {
		err = errors.New("handler returned no result")
	}
	return res, err
}
