// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: mcpland.json / mcpland.toml configuration loader
package file
