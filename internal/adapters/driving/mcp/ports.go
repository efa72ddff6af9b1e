package mcp

import (
	"github.com/custodia-labs/mcpland/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces the MCP server uses.
type Ports struct {
	// Tools lists and dispatches tools.
	Tools driving.ToolService

	// Registry reports plugin status. Optional.
	Registry driving.RegistryService

	// Store reports ingested context. Optional.
	Store driving.ContextStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Tools == nil {
		return ErrMissingToolService
	}
	return nil
}
