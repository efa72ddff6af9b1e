package driven

import (
	"context"

	"github.com/custodia-labs/mcpland/internal/core/domain"
)

// ChunkStore persists sources and their content-addressed chunks.
//
// Writes are serialised by the backing engine; callers add no locking.
// Reads may observe a partially ingested source.
type ChunkStore interface {
	// UpsertSource inserts the source or replaces its metadata and UpdatedAt.
	UpsertSource(ctx context.Context, source domain.Source) error

	// GetSource retrieves a source by ID. Returns domain.ErrNotFound if missing.
	GetSource(ctx context.Context, id string) (*domain.Source, error)

	// HasChunkHash reports whether sourceID already has a chunk with hash.
	HasChunkHash(ctx context.Context, sourceID, hash string) (bool, error)

	// InsertChunk stores a new chunk.
	InsertChunk(ctx context.Context, chunk domain.Chunk) error

	// ListChunks returns chunks in storage order. An empty sourceID returns
	// the chunks of every source. Rows whose stored embedding cannot be
	// decoded are skipped.
	ListChunks(ctx context.Context, sourceID string) ([]domain.Chunk, error)

	// CountChunks returns the number of chunks stored for sourceID.
	CountChunks(ctx context.Context, sourceID string) (int, error)

	// Close releases the underlying connection.
	Close() error
}
