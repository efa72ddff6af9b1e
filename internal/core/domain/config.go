package domain

import "strings"

// DefaultSourceFolder is the plugin source folder used when the
// configuration does not name one.
const DefaultSourceFolder = "src/mcps"

// Config is the mcpland configuration document.
// It is loaded once at startup and passed by value to the components that
// need it; a missing document is equivalent to the zero Config.
type Config struct {
	// Name is the server name announced to the host.
	Name string `json:"name,omitempty" toml:"name,omitempty"`

	// Description is the server description announced to the host.
	Description string `json:"description,omitempty" toml:"description,omitempty"`

	// Source is the plugin source folder, relative to the root directory.
	Source string `json:"source,omitempty" toml:"source,omitempty"`

	// Registry holds per-plugin enablement, keyed by plugin name.
	Registry map[string]PluginConfig `json:"registry,omitempty" toml:"registry,omitempty"`
}

// PluginConfig is the configuration entry for one plugin.
type PluginConfig struct {
	// Enabled defaults to true when absent.
	Enabled *bool `json:"enabled,omitempty" toml:"enabled,omitempty"`

	// Tools holds per-tool enablement, keyed by tool ID.
	Tools map[string]ToolConfig `json:"tools,omitempty" toml:"tools,omitempty"`
}

// ToolConfig is the configuration entry for one tool.
type ToolConfig struct {
	// Enabled defaults to true when absent.
	Enabled *bool `json:"enabled,omitempty" toml:"enabled,omitempty"`
}

// SourceFolder returns the configured plugin source folder,
// or DefaultSourceFolder when it is blank.
func (c Config) SourceFolder() string {
	if strings.TrimSpace(c.Source) == "" {
		return DefaultSourceFolder
	}
	return c.Source
}

// ServerName returns the configured server name or "McpLand".
func (c Config) ServerName() string {
	if c.Name == "" {
		return "McpLand"
	}
	return c.Name
}

// ServerDescription returns the configured description or a default one.
func (c Config) ServerDescription() string {
	if c.Description == "" {
		return "Aggregated MCP tools"
	}
	return c.Description
}

// IsPluginEnabled reports whether the named plugin is enabled.
func (c Config) IsPluginEnabled(plugin string) bool {
	entry, ok := c.Registry[plugin]
	if !ok || entry.Enabled == nil {
		return true
	}
	return *entry.Enabled
}

// IsToolEnabled reports whether a tool of the named plugin is enabled.
// Plugin-level enablement is not consulted here.
func (c Config) IsToolEnabled(plugin, tool string) bool {
	entry, ok := c.Registry[plugin]
	if !ok {
		return true
	}
	toolEntry, ok := entry.Tools[tool]
	if !ok || toolEntry.Enabled == nil {
		return true
	}
	return *toolEntry.Enabled
}
