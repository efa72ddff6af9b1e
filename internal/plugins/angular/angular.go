// Package angular provides the Angular documentation plugin.
package angular

import (
	"github.com/custodia-labs/mcpland/internal/chunker"
	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/services"
	"github.com/custodia-labs/mcpland/internal/plugins"
)

// Plugin identity.
const (
	Name        = "angular"
	Description = "Angular MCP"
)

// Docs tool identity.
const (
	DocsToolID      = "docs"
	DocsDescription = "Angular docs context search tool."
	DocsSourceID    = "angular-llm-context"
	DocsContextURL  = "https://angular.dev/context/llm-files/llms-full.txt"
)

// Register adds the plugin to catalog.
func Register(catalog *plugins.Catalog) error {
	return catalog.Register(Name, NewPlugin, map[string]plugins.ToolFactory{
		DocsToolID: NewDocsTool,
	})
}

// NewPlugin creates the Angular plugin.
func NewPlugin(cfg domain.Config) (services.Plugin, error) {
	return services.NewBasePlugin(services.PluginSpec{
		Name:        Name,
		Description: Description,
	}, cfg), nil
}

// NewDocsTool creates the tool searching the Angular LLM context file.
func NewDocsTool(deps plugins.Deps) (services.Tool, error) {
	return plugins.NewDocsTool(services.ToolSpec{
		Name:        DocsToolID,
		Description: DocsDescription,
		SourceID:    DocsSourceID,
		ContextURL:  DocsContextURL,
		Chunking: []chunker.Option{
			chunker.WithMaxChars(1200),
			chunker.WithOverlap(200),
		},
	}, "Angular", deps, deps.HTTP)
}
