package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// The store treats it as an opaque function: text in, fixed-length vector out.
//
// Implementations may include:
//   - OpenAI and OpenAI-compatible APIs (text-embedding-3-small, ...)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
