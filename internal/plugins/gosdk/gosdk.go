// Package gosdk provides a plugin documenting the MCP Go SDK from its
// GitHub repository.
package gosdk

import (
	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/services"
	"github.com/custodia-labs/mcpland/internal/plugins"
)

// Plugin identity.
const (
	Name        = "gosdk"
	Description = "MCP Go SDK"
)

// Docs tool identity. The context location is read through the GitHub
// context source.
const (
	DocsToolID      = "docs"
	DocsDescription = "MCP Go SDK docs context search tool."
	DocsLocation    = "modelcontextprotocol/go-sdk/README.md"
)

// Register adds the plugin to catalog.
func Register(catalog *plugins.Catalog) error {
	return catalog.Register(Name, NewPlugin, map[string]plugins.ToolFactory{
		DocsToolID: NewDocsTool,
	})
}

// NewPlugin creates the Go SDK plugin.
func NewPlugin(cfg domain.Config) (services.Plugin, error) {
	return services.NewBasePlugin(services.PluginSpec{
		Name:        Name,
		Description: Description,
	}, cfg), nil
}

// NewDocsTool creates the tool searching the SDK README.
func NewDocsTool(deps plugins.Deps) (services.Tool, error) {
	return plugins.NewDocsTool(services.ToolSpec{
		Name:        DocsToolID,
		Description: DocsDescription,
		ContextURL:  DocsLocation,
	}, "MCP Go SDK", deps, deps.GitHub)
}
