package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driving"
	"github.com/custodia-labs/mcpland/internal/logger"
)

// Ensure Registry implements the interface.
var _ driving.RegistryService = (*Registry)(nil)

// RegistryEntry is a registered plugin and its lifecycle state.
// Initialized flips once, from false to true, and never reverts.
type RegistryEntry struct {
	Plugin        Plugin
	Initialized   bool
	InitializedAt *time.Time
}

// PluginTools is the tool surface of one plugin with its lifecycle state.
type PluginTools struct {
	Name          string
	Initialized   bool
	InitializedAt *time.Time
	Tools         []driving.ToolDefinition
}

type registryEntry struct {
	RegistryEntry
	initializing bool
}

// Registry is the catalog of plugins for one process. Plugin names are the
// uniqueness key.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
	order   []string
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		now:     time.Now,
	}
}

// Register adds an uninitialised plugin. Fails with domain.ErrAlreadyExists
// when a plugin with the same name is registered.
func (r *Registry) Register(plugin Plugin) error {
	if plugin == nil || plugin.Name() == "" {
		return fmt.Errorf("%w: plugin is missing a name", domain.ErrInvalidIdentity)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := plugin.Name()
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: plugin '%s' is already registered", domain.ErrAlreadyExists, name)
	}
	r.entries[name] = &registryEntry{RegistryEntry: RegistryEntry{Plugin: plugin}}
	r.order = append(r.order, name)
	logger.Debug("Registered plugin %s", name)
	return nil
}

// Unregister removes a plugin. Returns false if it was not registered.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every plugin.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*registryEntry)
	r.order = nil
}

// Get returns a snapshot of the named entry.
func (r *Registry) Get(name string) (RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	if !ok {
		return RegistryEntry{}, false
	}
	return entry.RegistryEntry, true
}

// Has reports whether the named plugin is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Size returns the number of registered plugins.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Names returns plugin names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// All returns snapshots of every entry in registration order.
func (r *Registry) All() []RegistryEntry {
	return r.filter(func(*registryEntry) bool { return true })
}

// Initialized returns the entries whose plugin has been initialised.
func (r *Registry) Initialized() []RegistryEntry {
	return r.filter(func(e *registryEntry) bool { return e.Initialized })
}

// Uninitialized returns the entries whose plugin has not been initialised.
func (r *Registry) Uninitialized() []RegistryEntry {
	return r.filter(func(e *registryEntry) bool { return !e.Initialized })
}

// AllTools returns the tool surfaces of every plugin in registration order.
func (r *Registry) AllTools() []driving.ToolDefinition {
	var defs []driving.ToolDefinition
	for _, entry := range r.All() {
		defs = append(defs, entry.Plugin.Definitions()...)
	}
	return defs
}

// ToolsByPlugin returns the tool surfaces and state of one plugin.
func (r *Registry) ToolsByPlugin(name string) (PluginTools, bool) {
	entry, ok := r.Get(name)
	if !ok {
		return PluginTools{}, false
	}
	return PluginTools{
		Name:          name,
		Initialized:   entry.Initialized,
		InitializedAt: entry.InitializedAt,
		Tools:         entry.Plugin.Definitions(),
	}, true
}

// IsReady reports whether the named plugin is registered and initialised.
func (r *Registry) IsReady(name string) bool {
	entry, ok := r.Get(name)
	return ok && entry.Initialized
}

// Statuses returns the lifecycle state of every plugin in registration order.
func (r *Registry) Statuses() []domain.PluginStatus {
	entries := r.All()
	statuses := make([]domain.PluginStatus, 0, len(entries))
	for _, entry := range entries {
		statuses = append(statuses, domain.PluginStatus{
			Name:          entry.Plugin.Name(),
			Description:   entry.Plugin.Description(),
			Initialized:   entry.Initialized,
			InitializedAt: entry.InitializedAt,
			ToolCount:     len(entry.Plugin.Definitions()),
		})
	}
	return statuses
}

// Summary aggregates counts over every plugin. Tools lists only the tools
// of initialised plugins.
func (r *Registry) Summary() domain.RegistrySummary {
	entries := r.All()
	summary := domain.RegistrySummary{
		TotalPlugins: len(entries),
		PluginNames:  make([]string, 0, len(entries)),
		Tools:        []domain.ToolInfo{},
	}
	for _, entry := range entries {
		summary.PluginNames = append(summary.PluginNames, entry.Plugin.Name())
		if !entry.Initialized {
			summary.Uninitialized++
			continue
		}
		summary.Initialized++
		for _, def := range entry.Plugin.Definitions() {
			summary.Tools = append(summary.Tools, domain.ToolInfo{
				Name:        def.Name,
				Description: def.Description,
			})
		}
	}
	return summary
}

// InitializeAll initialises every plugin that is neither initialised nor
// being initialised by a concurrent call.
//
// Plugins run concurrently and all are awaited. A plugin that fails stays
// uninitialised, so a later call retries it; plugins that succeed are
// marked initialised regardless of failures elsewhere. The failures are
// returned joined.
func (r *Registry) InitializeAll(ctx context.Context) error {
	r.mu.Lock()
	var pending []*registryEntry
	for _, name := range r.order {
		entry := r.entries[name]
		if entry.Initialized || entry.initializing {
			continue
		}
		entry.initializing = true
		pending = append(pending, entry)
	}
	r.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	errs := make([]error, len(pending))
	var wg sync.WaitGroup
	for i, entry := range pending {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := entry.Plugin.Name()
			logger.Info("Initializing plugin %s", name)

			err := entry.Plugin.Init(ctx)

			r.mu.Lock()
			defer r.mu.Unlock()
			entry.initializing = false
			if err != nil {
				logger.Error("Plugin %s failed to initialize: %v", name, err)
				errs[i] = fmt.Errorf("plugin %s: %w", name, err)
				return
			}
			at := r.now()
			entry.Initialized = true
			entry.InitializedAt = &at
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (r *Registry) filter(keep func(*registryEntry) bool) []RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]RegistryEntry, 0, len(r.order))
	for _, name := range r.order {
		if entry := r.entries[name]; keep(entry) {
			result = append(result, entry.RegistryEntry)
		}
	}
	return result
}
