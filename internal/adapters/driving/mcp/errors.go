// Package mcp exposes the registered tools to an MCP host over stdio or
// streamable HTTP.
package mcp

import "errors"

// ErrMissingToolService is returned when the tool service is not provided.
var ErrMissingToolService = errors.New("mcp: tool service is required")
