// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - ChunkStore: Source and chunk persistence (SQLite, in-memory)
//   - EmbeddingService: Text to vector embedding (OpenAI, Ollama)
//   - ContextFetcher: Retrieval of reference text for a tool (HTTP, GitHub)
//   - ConfigLoader: The mcpland configuration document
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or plugin package
package driven
