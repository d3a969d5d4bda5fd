// Package toolserver exposes the tool catalog over the Model Context
// Protocol, so external agents can drive the same record store the built-in
// conversation uses.
package toolserver

import (
	"context"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cortexai/roster/internal/agent"
	"github.com/cortexai/roster/internal/dispatch"
	"github.com/cortexai/roster/internal/llm"
)

const (
	Name    = "roster"
	Version = "1.0.0"
)

// Sessions serialises access to the session whose store tools run against.
type Sessions interface {
	Do(fn func(s *agent.Session) error) error
}

// New registers every catalog tool on a fresh MCP server. Calls go through
// d, so they are logged and audited like model-issued calls.
func New(d *dispatch.Dispatcher, sessions Sessions) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)
	for _, t := range d.Catalog().Tools() {
		srv.AddTool(&mcp.Tool{
			Name:        string(t.Name),
			Description: t.Description,
			InputSchema: t.InputSchema,
		}, handler(d, sessions))
	}
	return srv
}

func handler(d *dispatch.Dispatcher, sessions Sessions) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := string(req.Params.Arguments)
		if args == "" {
			args = "{}"
		}
		call := llm.ToolCall{ID: "mcp_" + uuid.NewString(), Name: req.Params.Name, Arguments: args}

		var out dispatch.Outcome
		err := sessions.Do(func(s *agent.Session) error {
			var derr error
			out, derr = d.Dispatch(dispatch.WithSessionID(ctx, s.ID), s.Store(), call)
			return derr
		})
		if err != nil {
			return nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out.Content()}},
			IsError: !out.OK(),
		}, nil
	}
}
