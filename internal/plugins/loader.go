package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/mcpland/internal/core/services"
	"github.com/custodia-labs/mcpland/internal/logger"
)

// Loader instantiates catalogued plugins and registers them.
type Loader struct {
	catalog *Catalog
	deps    Deps
}

// NewLoader creates a loader. deps.Config decides enablement.
func NewLoader(catalog *Catalog, deps Deps) *Loader {
	return &Loader{catalog: catalog, deps: deps}
}

// Load creates every enabled plugin with its enabled tools and registers
// it into registry. Any identity or registration failure aborts the load.
// It returns the loaded plugins in catalog order.
func (l *Loader) Load(ctx context.Context, registry *services.Registry) ([]services.Plugin, error) {
	cfg := l.deps.Config
	source := cfg.SourceFolder()

	var loaded []services.Plugin
	for _, dir := range l.catalog.Names() {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}

		entry, _ := l.catalog.Get(dir)
		if entry.Plugin == nil {
			return loaded, fmt.Errorf("plugin at %q has no factory", source+"/"+dir)
		}

		plugin, err := entry.Plugin(cfg)
		if err != nil {
			return loaded, fmt.Errorf("create plugin at %q: %w", source+"/"+dir, err)
		}
		if plugin == nil || strings.TrimSpace(plugin.Name()) == "" {
			return loaded, fmt.Errorf("plugin at %q is missing required name", source+"/"+dir)
		}
		name := plugin.Name()

		if !cfg.IsPluginEnabled(name) {
			logger.Info("Plugin %s is disabled, skipping", name)
			continue
		}

		for _, toolID := range entry.ToolIDs() {
			if !cfg.IsToolEnabled(name, toolID) {
				logger.Debug("Tool %s/%s is disabled, skipping", name, toolID)
				continue
			}

			factory := entry.Tools[toolID]
			if factory == nil {
				return loaded, fmt.Errorf("tool %s/%s has no factory", name, toolID)
			}
			tool, err := factory(l.deps)
			if err != nil {
				return loaded, fmt.Errorf("create tool %s/%s: %w", name, toolID, err)
			}
			if err := plugin.RegisterTool(tool, toolID); err != nil {
				return loaded, fmt.Errorf("register tool %s/%s: %w", name, toolID, err)
			}
		}

		if err := registry.Register(plugin); err != nil {
			return loaded, fmt.Errorf("register plugin %s: %w", name, err)
		}
		logger.Debug("Loaded plugin %s", name)
		loaded = append(loaded, plugin)
	}

	return loaded, nil
}
