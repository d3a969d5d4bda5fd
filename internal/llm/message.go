// Package llm is the boundary between the orchestration loop and a
// completion service: provider-neutral conversation messages, the Model
// interface and its Anthropic implementation.
package llm

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one tool invocation requested by the model. Arguments is the
// raw payload exactly as the model produced it and may not be valid JSON.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of the conversation. ToolCalls is only set on
// assistant messages; ToolCallID and IsError only on tool messages.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	IsError    bool       `json:"is_error,omitempty"`
}

func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

func AssistantMessage(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolMessage answers the invocation callID.
func ToolMessage(callID, content string, isError bool) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, IsError: isError}
}

// ToolSpec is a tool as advertised to the model.
type ToolSpec struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide whether to call a tool.
	ToolChoiceAuto ToolChoice = "auto"
)

type Request struct {
	Messages   []Message
	Tools      []ToolSpec
	ToolChoice ToolChoice
}

type Response struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string
}

func (r *Response) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// Model is a completion service. Complete blocks for one round-trip.
type Model interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// PendingToolCalls returns the ids of tool calls in msgs that have no tool
// message answering them yet.
func PendingToolCalls(msgs []Message) []string {
	answered := make(map[string]bool)
	for _, m := range msgs {
		if m.Role == RoleTool {
			answered[m.ToolCallID] = true
		}
	}
	var pending []string
	for _, m := range msgs {
		for _, c := range m.ToolCalls {
			if !answered[c.ID] {
				pending = append(pending, c.ID)
			}
		}
	}
	return pending
}
