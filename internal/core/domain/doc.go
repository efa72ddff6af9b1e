// Package domain defines the core business entities for mcpland.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: A logical context document identified by a stable ID
//   - Chunk: An embedded, content-addressed slice of a source
//   - SearchResult: A scored chunk returned by similarity search
//   - Config: The plugin/tool enablement document (mcpland.json)
//   - ToolResult: The result shape returned to the host boundary
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
