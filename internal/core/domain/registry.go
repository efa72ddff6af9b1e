package domain

import "time"

// ToolInfo is the name and description of a registered tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PluginStatus reports the lifecycle state of one registered plugin.
type PluginStatus struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Initialized   bool       `json:"initialized"`
	InitializedAt *time.Time `json:"initializedAt,omitempty"`
	ToolCount     int        `json:"toolCount"`
}

// RegistrySummary aggregates the state of every registered plugin.
// Tools lists only the tools of initialized plugins.
type RegistrySummary struct {
	TotalPlugins  int        `json:"totalPlugins"`
	Initialized   int        `json:"initialized"`
	Uninitialized int        `json:"uninitialized"`
	PluginNames   []string   `json:"pluginNames"`
	Tools         []ToolInfo `json:"tools"`
}
