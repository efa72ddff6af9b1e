package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driving"
	"github.com/custodia-labs/mcpland/internal/logger"
)

// PluginSpec identifies a plugin.
type PluginSpec struct {
	Name        string
	Description string
}

// Plugin is a named bundle of tools.
type Plugin interface {
	// Name is the plugin's unique name.
	Name() string

	// Description describes the plugin.
	Description() string

	// RegisterTool validates and normalises tool and adds it to the plugin.
	// toolID is the identifier the tool was discovered under.
	RegisterTool(tool Tool, toolID string) error

	// Init initialises every registered tool.
	Init(ctx context.Context) error

	// Definitions returns the host surfaces of the registered tools.
	Definitions() []driving.ToolDefinition
}

// Ensure BasePlugin implements the interface.
var _ Plugin = (*BasePlugin)(nil)

// BasePlugin is the standard Plugin implementation.
type BasePlugin struct {
	spec   PluginSpec
	config domain.Config

	mu    sync.RWMutex
	tools []Tool
}

// NewBasePlugin creates a plugin. cfg decides which tools are enabled.
func NewBasePlugin(spec PluginSpec, cfg domain.Config) *BasePlugin {
	return &BasePlugin{spec: spec, config: cfg}
}

// Name returns the plugin name.
func (p *BasePlugin) Name() string {
	return p.spec.Name
}

// Description returns the plugin description.
func (p *BasePlugin) Description() string {
	return p.spec.Description
}

// RegisterTool validates the tool's identity, normalises its spec and adds
// it to the plugin. The spec is only rewritten once the tool is accepted.
//
// The tool name gains a "<plugin>-" prefix when it lacks one, an empty
// SourceID becomes "<plugin>-<tool>-context" and a tool declaring another
// plugin is rejected with domain.ErrPluginMismatch. A tool disabled by
// configuration is skipped with a warning.
func (p *BasePlugin) RegisterTool(tool Tool, toolID string) error {
	if tool == nil || tool.Spec() == nil {
		return fmt.Errorf("%w: tool is missing its spec", domain.ErrInvalidIdentity)
	}
	spec := *tool.Spec()

	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return fmt.Errorf("%w: tool is missing a name", domain.ErrInvalidIdentity)
	}
	if strings.TrimSpace(spec.Description) == "" {
		return fmt.Errorf("%w: tool %q is missing a description", domain.ErrInvalidIdentity, name)
	}

	if spec.PluginID == "" {
		spec.PluginID = p.spec.Name
	}
	if spec.ToolID == "" {
		spec.ToolID = toolID
	}
	if spec.ToolID == "" {
		spec.ToolID = name
	}
	if spec.PluginID != p.spec.Name {
		return fmt.Errorf("%w: tool %q belongs to %q, not %q",
			domain.ErrPluginMismatch, name, spec.PluginID, p.spec.Name)
	}

	prefix := spec.PluginID + "-"
	if !strings.HasPrefix(name, prefix) {
		name = prefix + name
	}
	spec.Name = name
	if strings.TrimSpace(spec.SourceID) == "" {
		spec.SourceID = fmt.Sprintf("%s-%s-context", spec.PluginID, spec.ToolID)
	}

	if !p.config.IsToolEnabled(p.spec.Name, spec.ToolID) {
		logger.Warn("Skipping disabled tool %s/%s", p.spec.Name, spec.ToolID)
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.tools {
		if existing.Spec().Name == spec.Name {
			return fmt.Errorf("%w: tool %q in plugin %q", domain.ErrAlreadyExists, spec.Name, p.spec.Name)
		}
	}
	*tool.Spec() = spec
	p.tools = append(p.tools, tool)
	return nil
}

// Tools returns the registered tools in registration order.
func (p *BasePlugin) Tools() []Tool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tools := make([]Tool, len(p.tools))
	copy(tools, p.tools)
	return tools
}

// Init initialises all tools concurrently and waits for every one of them.
// Failures are joined.
func (p *BasePlugin) Init(ctx context.Context) error {
	tools := p.Tools()
	errs := make([]error, len(tools))

	var wg sync.WaitGroup
	for i, tool := range tools {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tool.Init(ctx); err != nil {
				errs[i] = fmt.Errorf("tool %s: %w", tool.Spec().Name, err)
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Definitions returns the host surfaces of the registered tools.
func (p *BasePlugin) Definitions() []driving.ToolDefinition {
	tools := p.Tools()
	defs := make([]driving.ToolDefinition, 0, len(tools))
	for _, tool := range tools {
		spec := tool.Spec()
		defs = append(defs, driving.ToolDefinition{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.InputSchema,
			Handler:     tool.Handle,
		})
	}
	return defs
}
