// Package plugins discovers plugins from a compile-time catalog and loads
// the enabled ones into a services.Registry.
//
// A plugin package registers a PluginFactory together with one ToolFactory
// per tool ID. The Loader walks the catalog in name order, consults the
// configuration for plugin and tool enablement, instantiates tools and
// registers them into their plugin.
package plugins
