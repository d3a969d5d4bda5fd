// Package agent drives one conversation turn between the model and the
// tool dispatcher.
package agent

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cortexai/roster/internal/dispatch"
	"github.com/cortexai/roster/internal/llm"
	"github.com/cortexai/roster/internal/store"
)

// Agent runs turns. It holds no conversation state of its own.
type Agent struct {
	model      llm.Model
	dispatcher *dispatch.Dispatcher
	executeAll bool
}

type Option func(*Agent)

// WithExecuteAllToolCalls executes every tool call of a response in order
// instead of only the first.
func WithExecuteAllToolCalls(enabled bool) Option {
	return func(a *Agent) { a.executeAll = enabled }
}

func New(model llm.Model, d *dispatch.Dispatcher, opts ...Option) *Agent {
	a := &Agent{model: model, dispatcher: d}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	Answer     string
	Outcomes   []dispatch.Outcome
	ToolsUsed  []string
	Iterations int
}

// Turn appends userText to s and produces the turn's final answer.
//
// The model is called once with the tool catalog. If it requests tools, the
// first call (or every call, with WithExecuteAllToolCalls) is dispatched
// against the session store, every requested call is answered, and the
// model is called again without tools to write the answer.
//
// Errors are *Error values. On error the conversation is restored to its
// state before the turn; store mutations already made are kept.
func (a *Agent) Turn(ctx context.Context, s *Session, userText string) (*TurnResult, error) {
	if s == nil || s.store == nil {
		return nil, NewPreconditionError("session has no record store", store.ErrNoStore)
	}
	ctx = dispatch.WithSessionID(ctx, s.ID)
	ctx, span := startTurnSpan(ctx, s.ID)
	start := time.Now()
	mark := s.Len()

	res, err := a.turn(ctx, s, userText)
	if err != nil {
		s.truncate(mark)
		span.fail(err)
		log.Warn().Err(err).Str("session_id", s.ID).Msg("agent turn failed")
		return nil, err
	}
	span.end(res)

	log.Info().
		Str("session_id", s.ID).
		Int("iterations", res.Iterations).
		Strs("tools_used", res.ToolsUsed).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("agent turn")
	return res, nil
}

func (a *Agent) turn(ctx context.Context, s *Session, userText string) (*TurnResult, error) {
	s.append(llm.UserMessage(userText))

	resp, err := a.model.Complete(ctx, &llm.Request{
		Messages:   s.Messages(),
		Tools:      a.dispatcher.Catalog().Specs(),
		ToolChoice: llm.ToolChoiceAuto,
	})
	if err != nil {
		return nil, NewLanguageModelError(err)
	}
	res := &TurnResult{Answer: resp.Content, Iterations: 1}

	if resp.HasToolCalls() {
		s.append(llm.AssistantMessage(resp.Content, resp.ToolCalls...))

		for i, call := range resp.ToolCalls {
			var out dispatch.Outcome
			if i > 0 && !a.executeAll {
				out = dispatch.Skipped(call)
			} else {
				out, err = a.dispatcher.Dispatch(ctx, s.store, call)
				if err != nil {
					return nil, NewPreconditionError("tool dispatch failed", err)
				}
				res.ToolsUsed = append(res.ToolsUsed, call.Name)
			}
			res.Outcomes = append(res.Outcomes, out)
			s.append(out.Message())
		}

		final, err := a.model.Complete(ctx, &llm.Request{Messages: s.Messages()})
		if err != nil {
			return nil, NewLanguageModelError(err)
		}
		res.Iterations++
		if final.HasToolCalls() {
			log.Warn().
				Str("session_id", s.ID).
				Int("tool_calls", len(final.ToolCalls)).
				Msg("ignoring tool calls in final answer")
		}
		res.Answer = final.Content
	}

	s.append(llm.AssistantMessage(res.Answer))
	return res, nil
}

// Run executes one turn against a fresh store seeded with input. The
// session is returned so callers can read the resulting store.
func (a *Agent) Run(ctx context.Context, systemPrompt string, input map[string]any, userText string) (*TurnResult, *Session, error) {
	s := NewSession(systemPrompt, store.New(input))
	res, err := a.Turn(ctx, s, userText)
	return res, s, err
}
