package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
)

const (
	DefaultModel     = "claude-sonnet-4-6"
	DefaultMaxTokens = 4096
)

type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// AnthropicModel implements Model on the Anthropic Messages API or a
// compatible provider.
type AnthropicModel struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicModel builds a client from cfg. Extra request options are
// applied after the config-derived ones.
func NewAnthropicModel(cfg AnthropicConfig, opts ...option.RequestOption) *AnthropicModel {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	base := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicModel{
		client:    anthropic.NewClient(append(base, opts...)...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (m *AnthropicModel) Complete(ctx context.Context, req *Request) (*Response, error) {
	// The API rejects tool_use/tool_result blocks in a request that defines
	// no tools, so a tool-less follow-up carries the exchange as text.
	flatten := len(req.Tools) == 0
	system, messages := toAnthropicMessages(req.Messages, flatten)

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(m.model)),
		MaxTokens: anthropic.F(int64(m.maxTokens)),
		Messages:  anthropic.F(messages),
	}
	if len(system) > 0 {
		params.System = anthropic.F(system)
	}
	if len(req.Tools) > 0 {
		params.Tools = anthropic.F(toAnthropicTools(req.Tools))
		if req.ToolChoice == ToolChoiceAuto {
			params.ToolChoice = anthropic.F[anthropic.ToolChoiceUnionParam](anthropic.ToolChoiceAutoParam{
				Type: anthropic.F(anthropic.ToolChoiceAutoTypeAuto),
			})
		}
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}

	out := &Response{StopReason: string(resp.StopReason)}
	var text strings.Builder
	for _, block := range resp.Content {
		switch b := block.AsUnion().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		case anthropic.ToolUseBlock:
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: string(b.Input),
			})
		}
	}
	out.Content = text.String()

	log.Debug().
		Str("model", m.model).
		Str("stop_reason", out.StopReason).
		Int("tool_calls", len(out.ToolCalls)).
		Int64("input_tokens", resp.Usage.InputTokens).
		Int64("output_tokens", resp.Usage.OutputTokens).
		Msg("llm completion")

	return out, nil
}

func toAnthropicTools(specs []ToolSpec) []anthropic.ToolUnionUnionParam {
	out := make([]anthropic.ToolUnionUnionParam, len(specs))
	for i, s := range specs {
		out[i] = anthropic.ToolParam{
			Name:        anthropic.String(s.Name),
			Description: anthropic.String(s.Description),
			InputSchema: anthropic.F[interface{}](s.InputSchema),
		}
	}
	return out
}

// toAnthropicMessages splits out system text and folds runs of tool
// messages into one user message of tool_result blocks.
func toAnthropicMessages(msgs []Message, flatten bool) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var out []anthropic.MessageParam
	var results []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.NewTextBlock(m.Content))
		case RoleTool:
			if flatten {
				results = append(results, anthropic.NewTextBlock(
					fmt.Sprintf("[tool result %s] %s", m.ToolCallID, m.Content)))
				continue
			}
			results = append(results, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, m.IsError))
		case RoleUser:
			flush()
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			flush()
			blocks := assistantBlocks(m, flatten)
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		}
	}
	flush()
	return system, out
}

func assistantBlocks(m Message, flatten bool) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	if m.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(m.Content))
	}
	for _, c := range m.ToolCalls {
		if flatten {
			blocks = append(blocks, anthropic.NewTextBlock(
				fmt.Sprintf("[tool call %s] %s %s", c.ID, c.Name, c.Arguments)))
			continue
		}
		blocks = append(blocks, anthropic.NewToolUseBlockParam(c.ID, c.Name, toolInput(c.Arguments)))
	}
	return blocks
}

// toolInput echoes the model's payload back as an object. A payload that is
// not a JSON object is wrapped so the conversation stays valid.
func toolInput(args string) interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(args), &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]interface{}{"raw": args}
}
