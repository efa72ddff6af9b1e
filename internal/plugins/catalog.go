package plugins

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driven"
	"github.com/custodia-labs/mcpland/internal/core/ports/driving"
	"github.com/custodia-labs/mcpland/internal/core/services"
)

// Deps are the shared collaborators handed to tool factories.
type Deps struct {
	// Store holds ingested context.
	Store driving.ContextStore

	// HTTP fetches context from URLs.
	HTTP driven.ContextFetcher

	// GitHub fetches context from repository files. May be nil.
	GitHub driven.ContextFetcher

	// Config is the loaded configuration document.
	Config domain.Config

	// Root is the project root directory.
	Root string
}

// ToolDeps returns the services.ToolDeps for a tool fetching through fetcher.
func (d Deps) ToolDeps(fetcher driven.ContextFetcher) services.ToolDeps {
	return services.ToolDeps{
		Store:   d.Store,
		Fetcher: fetcher,
		Config:  d.Config,
		Root:    d.Root,
	}
}

// PluginFactory creates a plugin. cfg decides which of its tools are enabled.
type PluginFactory func(cfg domain.Config) (services.Plugin, error)

// ToolFactory creates a tool.
type ToolFactory func(deps Deps) (services.Tool, error)

// Entry is one catalogued plugin.
type Entry struct {
	Plugin PluginFactory
	Tools  map[string]ToolFactory
}

// Catalog maps plugin directory names to their factories.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]Entry)}
}

// Register adds a plugin under name. Names must be unique.
func (c *Catalog) Register(name string, plugin PluginFactory, tools map[string]ToolFactory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: catalog entry has no name", domain.ErrInvalidIdentity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[name]; ok {
		return fmt.Errorf("%w: plugin %q is already catalogued", domain.ErrAlreadyExists, name)
	}

	copied := make(map[string]ToolFactory, len(tools))
	for id, factory := range tools {
		copied[id] = factory
	}
	c.entries[name] = Entry{Plugin: plugin, Tools: copied}
	return nil
}

// Get returns the entry registered under name.
func (c *Catalog) Get(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[name]
	return entry, ok
}

// Has returns true if a plugin is registered under name.
func (c *Catalog) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Names returns the registered names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToolIDs returns the entry's tool IDs in sorted order.
func (e Entry) ToolIDs() []string {
	ids := make([]string, 0, len(e.Tools))
	for id := range e.Tools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
