package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source represents one ingested context document.
// At most one Source exists per ID; saving it again replaces Metadata
// and bumps UpdatedAt.
type Source struct {
	// ID is the stable, caller-chosen identifier (e.g. "angular-llm-context").
	ID string

	// Metadata contains arbitrary key-value pairs such as the tool name
	// and the URL the context was fetched from. May be nil.
	Metadata map[string]any

	// UpdatedAt is when the source was last upserted.
	UpdatedAt time.Time
}

// Chunk is one embedded segment of a Source.
type Chunk struct {
	// ID is the system-generated unique identifier.
	ID string

	// SourceID links to the owning Source.
	SourceID string

	// Index is the position assigned by the ingesting pass.
	// Not required to be contiguous: deduplicated chunks still consume an index.
	Index int

	// Content is the chunk text.
	Content string

	// ContentHash is HashContent(Content). Unique per SourceID.
	ContentHash string

	// Embedding is the vector representation of Content.
	Embedding []float32

	// CreatedAt is when the chunk was inserted.
	CreatedAt time.Time
}

// HashContent returns the deterministic content hash used for chunk
// deduplication: the hex-encoded SHA-256 of content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
