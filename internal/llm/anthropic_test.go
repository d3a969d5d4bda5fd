package llm_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/go-cmp/cmp"

	"github.com/cortexai/roster/internal/llm"
)

type fakeTransport struct {
	status int
	body   string
	seen   [][]byte
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	f.seen = append(f.seen, b)
	resp := &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(f.body))),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func newModel(ft *fakeTransport) *llm.AnthropicModel {
	return llm.NewAnthropicModel(
		llm.AnthropicConfig{APIKey: "test-key", BaseURL: "http://anthropic.test"},
		option.WithHTTPClient(&http.Client{Transport: ft}),
		option.WithMaxRetries(0),
	)
}

type sentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type sentRequest struct {
	Model  string `json:"model"`
	System []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string      `json:"role"`
		Content []sentBlock `json:"content"`
	} `json:"messages"`
	Tools []struct {
		Name        string                 `json:"name"`
		InputSchema map[string]interface{} `json:"input_schema"`
	} `json:"tools"`
	ToolChoice *struct {
		Type string `json:"type"`
	} `json:"tool_choice"`
}

func decodeSent(t *testing.T, b []byte) sentRequest {
	t.Helper()
	var req sentRequest
	if err := json.Unmarshal(b, &req); err != nil {
		t.Fatalf("decode request: %v\nbody=%s", err, b)
	}
	return req
}

func TestAnthropicModelParsesToolUse(t *testing.T) {
	ft := &fakeTransport{status: 200, body: `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-6",
		"content": [
			{"type": "text", "text": "Creating."},
			{"type": "tool_use", "id": "toolu_1", "name": "create_person", "input": {"name": "Charlie"}}
		],
		"stop_reason": "tool_use", "stop_sequence": null,
		"usage": {"input_tokens": 10, "output_tokens": 5}
	}`}

	resp, err := newModel(ft).Complete(context.Background(), &llm.Request{
		Messages: []llm.Message{
			llm.SystemMessage("You manage people."),
			llm.UserMessage("Create Charlie"),
		},
		Tools: []llm.ToolSpec{{
			Name:        "create_person",
			Description: "Create a person",
			InputSchema: map[string]interface{}{"type": "object"},
		}},
		ToolChoice: llm.ToolChoiceAuto,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if resp.Content != "Creating." || resp.StopReason != "tool_use" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("tool calls = %d", len(resp.ToolCalls))
	}
	call := resp.ToolCalls[0]
	if call.ID != "toolu_1" || call.Name != "create_person" {
		t.Errorf("unexpected call: %+v", call)
	}
	var args map[string]string
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil || args["name"] != "Charlie" {
		t.Errorf("arguments = %q (%v)", call.Arguments, err)
	}

	sent := decodeSent(t, ft.seen[0])
	if sent.Model != llm.DefaultModel {
		t.Errorf("model = %q", sent.Model)
	}
	if len(sent.System) != 1 || sent.System[0].Text != "You manage people." {
		t.Errorf("system = %+v", sent.System)
	}
	if len(sent.Messages) != 1 || sent.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", sent.Messages)
	}
	if len(sent.Tools) != 1 || sent.Tools[0].Name != "create_person" {
		t.Errorf("tools = %+v", sent.Tools)
	}
	if sent.ToolChoice == nil || sent.ToolChoice.Type != "auto" {
		t.Errorf("tool_choice = %+v", sent.ToolChoice)
	}
}

func TestAnthropicModelSendsToolExchange(t *testing.T) {
	ft := &fakeTransport{status: 200, body: `{
		"id": "msg_2", "type": "message", "role": "assistant", "model": "m",
		"content": [{"type": "text", "text": "Done"}],
		"stop_reason": "end_turn", "stop_sequence": null,
		"usage": {"input_tokens": 1, "output_tokens": 1}
	}`}

	msgs := []llm.Message{
		llm.UserMessage("Create Charlie"),
		llm.AssistantMessage("", llm.ToolCall{ID: "a", Name: "create_person", Arguments: `{"name":"Charlie"}`}),
		llm.ToolMessage("a", `{"result":{"status":"success"}}`, false),
	}
	tools := []llm.ToolSpec{{Name: "create_person", InputSchema: map[string]interface{}{"type": "object"}}}

	if _, err := newModel(ft).Complete(context.Background(), &llm.Request{Messages: msgs, Tools: tools}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	sent := decodeSent(t, ft.seen[0])

	var roles []string
	for _, m := range sent.Messages {
		roles = append(roles, m.Role)
	}
	if diff := cmp.Diff([]string{"user", "assistant", "user"}, roles); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}
	use := sent.Messages[1].Content[0]
	if use.Type != "tool_use" || use.ID != "a" || use.Name != "create_person" {
		t.Errorf("tool_use block = %+v", use)
	}
	result := sent.Messages[2].Content[0]
	if result.Type != "tool_result" || result.ToolUseID != "a" {
		t.Errorf("tool_result block = %+v", result)
	}
	if sent.ToolChoice != nil {
		t.Errorf("tool_choice should be omitted unless requested, got %+v", sent.ToolChoice)
	}
}

func TestAnthropicModelFlattensWithoutTools(t *testing.T) {
	ft := &fakeTransport{status: 200, body: `{
		"id": "msg_3", "type": "message", "role": "assistant", "model": "m",
		"content": [{"type": "text", "text": "Charlie was created."}],
		"stop_reason": "end_turn", "stop_sequence": null,
		"usage": {"input_tokens": 1, "output_tokens": 1}
	}`}

	msgs := []llm.Message{
		llm.UserMessage("Create Charlie"),
		llm.AssistantMessage("", llm.ToolCall{ID: "a", Name: "create_person", Arguments: `not json`}),
		llm.ToolMessage("a", `{"error":{"kind":"malformed_arguments"}}`, true),
	}
	resp, err := newModel(ft).Complete(context.Background(), &llm.Request{Messages: msgs})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "Charlie was created." || resp.HasToolCalls() {
		t.Errorf("unexpected response: %+v", resp)
	}

	sent := decodeSent(t, ft.seen[0])
	if len(sent.Tools) != 0 {
		t.Errorf("tools should be omitted, got %d", len(sent.Tools))
	}
	for _, m := range sent.Messages {
		for _, b := range m.Content {
			if b.Type != "text" {
				t.Errorf("%s message carries a %s block", m.Role, b.Type)
			}
		}
	}
}

func TestAnthropicModelSurfacesHTTPErrors(t *testing.T) {
	ft := &fakeTransport{status: 401, body: `{"type":"error","error":{"type":"authentication_error","message":"bad key"}}`}
	_, err := newModel(ft).Complete(context.Background(), &llm.Request{
		Messages: []llm.Message{llm.UserMessage("hi")},
	})
	if err == nil {
		t.Fatal("expected an error for a 401 response")
	}
}

func TestPendingToolCalls(t *testing.T) {
	msgs := []llm.Message{
		llm.UserMessage("x"),
		llm.AssistantMessage("", llm.ToolCall{ID: "a"}, llm.ToolCall{ID: "b"}),
		llm.ToolMessage("a", "{}", false),
	}
	if diff := cmp.Diff([]string{"b"}, llm.PendingToolCalls(msgs)); diff != "" {
		t.Errorf("PendingToolCalls mismatch (-want +got):\n%s", diff)
	}
	msgs = append(msgs, llm.ToolMessage("b", "{}", true))
	if got := llm.PendingToolCalls(msgs); len(got) != 0 {
		t.Errorf("PendingToolCalls = %v, want none", got)
	}
}
