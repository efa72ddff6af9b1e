package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mcpland/internal/core/domain"
)

// registerTools adds every tool surface of the tool service.
func (s *Server) registerTools() {
	for _, def := range s.ports.Tools.Definitions() {
		schema := def.InputSchema
		if schema == nil {
			schema = &jsonschema.Schema{Type: "object"}
		}
		s.server.AddTool(&mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: schema,
		}, s.toolHandler(def.Name))
	}
}

// toolHandler dispatches a call through the tool service. Failures are
// reported inside the result, never as protocol errors.
func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args []byte
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		return toCallToolResult(s.ports.Tools.Call(ctx, name, args)), nil
	}
}

func toCallToolResult(result *domain.ToolResult) *mcp.CallToolResult {
	if result == nil {
		result = domain.TextResult("")
	}
	content := make([]mcp.Content, len(result.Content))
	for i, text := range result.Content {
		content[i] = &mcp.TextContent{Text: text}
	}
	return &mcp.CallToolResult{
		Content: content,
		IsError: result.IsError,
	}
}
