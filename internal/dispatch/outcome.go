package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/cortexai/roster/internal/llm"
	"github.com/cortexai/roster/internal/tools"
)

// FailureKind classifies an invocation the dispatcher could not complete.
type FailureKind string

const (
	MalformedArguments FailureKind = "malformed_arguments"
	UnknownTool        FailureKind = "unknown_tool"
	InvalidArguments   FailureKind = "invalid_arguments"
	HandlerFailure     FailureKind = "handler_failure"
	SkippedToolCall    FailureKind = "skipped_tool_call"
)

// Failure is a malformed or failed invocation, reported back to the model as
// data. Arguments carries the raw payload when it could not be parsed.
type Failure struct {
	Kind      FailureKind `json:"kind"`
	Message   string      `json:"message"`
	Tool      string      `json:"tool"`
	Arguments string      `json:"arguments,omitempty"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s (%s): %s", f.Kind, f.Tool, f.Message)
}

// Outcome is the formatted result of one dispatched call. Exactly one of
// Result and Failure is set.
type Outcome struct {
	CallID  string        `json:"call_id"`
	Tool    string        `json:"tool"`
	Result  *tools.Result `json:"result,omitempty"`
	Failure *Failure      `json:"error,omitempty"`
}

// OK reports whether the handler ran and returned a result. Domain statuses
// such as not_found still count as OK.
func (o Outcome) OK() bool {
	return o.Failure == nil && o.Result != nil
}

// Status is the result status, or the failure kind.
func (o Outcome) Status() string {
	if o.Failure != nil {
		return string(o.Failure.Kind)
	}
	if o.Result != nil {
		return string(o.Result.Status)
	}
	return ""
}

// Content is the tool-result payload: {"result": ...} or {"error": ...}.
func (o Outcome) Content() string {
	var body interface{}
	if o.Failure != nil {
		body = map[string]*Failure{"error": o.Failure}
	} else {
		body = map[string]*tools.Result{"result": o.Result}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprintf(`{"error":{"kind":%q,"message":%q,"tool":%q}}`, HandlerFailure, err.Error(), o.Tool)
	}
	return string(b)
}

// Message addresses Content to the originating invocation.
func (o Outcome) Message() llm.Message {
	return llm.ToolMessage(o.CallID, o.Content(), o.Failure != nil)
}

// Skipped answers a call that was requested but not executed.
func Skipped(call llm.ToolCall) Outcome {
	return Outcome{
		CallID: call.ID,
		Tool:   call.Name,
		Failure: &Failure{
			Kind:    SkippedToolCall,
			Message: "only one tool call is executed per turn; request it again in a later turn",
			Tool:    call.Name,
		},
	}
}
