package driving

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/custodia-labs/mcpland/internal/core/domain"
)

// ToolHandler answers one tool call with raw JSON arguments.
type ToolHandler func(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error)

// ToolDefinition is the surface a tool exposes to the host.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Handler     ToolHandler
}

// ToolService lists tool surfaces and dispatches calls by exact name.
type ToolService interface {
	// Definitions returns every exposed tool surface.
	Definitions() []ToolDefinition

	// Call invokes the named tool. Unknown names, invalid arguments and
	// handler failures come back as error results, never as Go errors.
	Call(ctx context.Context, name string, args json.RawMessage) *domain.ToolResult
}

// RegistryService exposes plugin lifecycle and status to external actors.
type RegistryService interface {
	// InitializeAll initialises every plugin not yet initialised.
	InitializeAll(ctx context.Context) error

	// IsReady reports whether the named plugin is registered and initialised.
	IsReady(name string) bool

	// Statuses returns the lifecycle state of every plugin.
	Statuses() []domain.PluginStatus

	// Summary aggregates registry counts and initialised tool names.
	Summary() domain.RegistrySummary
}
