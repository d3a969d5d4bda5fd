// Package llmtest provides a scripted llm.Model for tests.
package llmtest

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/cortexai/roster/internal/llm"
)

// ErrScriptExhausted is returned once every scripted step has been consumed.
var ErrScriptExhausted = errors.New("llmtest: no scripted responses left")

// Step is one scripted Complete result: either a response or an error.
type Step struct {
	Response *llm.Response
	Err      error
}

// Text scripts a plain answer.
func Text(content string) Step {
	return Step{Response: &llm.Response{Content: content, StopReason: "end_turn"}}
}

// Calls scripts a response requesting the given tool calls.
func Calls(calls ...llm.ToolCall) Step {
	return Step{Response: &llm.Response{ToolCalls: calls, StopReason: "tool_use"}}
}

// Call is shorthand for a single llm.ToolCall.
func Call(id, name, arguments string) llm.ToolCall {
	return llm.ToolCall{ID: id, Name: name, Arguments: arguments}
}

// Fail scripts a transport error.
func Fail(err error) Step {
	return Step{Err: err}
}

// ScriptedModel replays Steps in order and records every request it sees.
type ScriptedModel struct {
	mu       sync.Mutex
	steps    []Step
	requests []*llm.Request
}

func NewScriptedModel(steps ...Step) *ScriptedModel {
	return &ScriptedModel{steps: steps}
}

func (m *ScriptedModel) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Requests are copied so later appends by the caller do not rewrite history.
	snapshot := *req
	snapshot.Messages = slices.Clone(req.Messages)
	snapshot.Tools = slices.Clone(req.Tools)
	m.requests = append(m.requests, &snapshot)

	if len(m.steps) == 0 {
		return nil, ErrScriptExhausted
	}
	step := m.steps[0]
	m.steps = m.steps[1:]
	if step.Err != nil {
		return nil, step.Err
	}
	resp := *step.Response
	return &resp, nil
}

// Requests returns the requests received so far.
func (m *ScriptedModel) Requests() []*llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.requests)
}

// Remaining reports how many scripted steps have not been consumed.
func (m *ScriptedModel) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.steps)
}
