package driving

import (
	"context"

	"github.com/custodia-labs/mcpland/internal/core/domain"
)

// IngestStats reports what a single ingestion pass did.
type IngestStats struct {
	// Total is the number of candidate chunks handed to the pass.
	Total int
	// Inserted is the number of chunks embedded and stored.
	Inserted int
	// Skipped is the number of chunks whose hash was already stored.
	Skipped int
}

// ContextStore ingests tool context and answers similarity queries over it.
type ContextStore interface {
	// UpsertSource inserts or updates a source by ID.
	UpsertSource(ctx context.Context, source domain.Source) error

	// Ingest upserts the source and stores every chunk whose content hash is
	// not yet present for it. Returns domain.ErrIngestionCancelled when
	// stopped before the last chunk; chunks stored so far are kept.
	Ingest(ctx context.Context, source domain.Source, chunks []string) (IngestStats, error)

	// Search returns the chunks most similar to query, best first.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Source returns a stored source. Returns domain.ErrNotFound if missing.
	Source(ctx context.Context, id string) (*domain.Source, error)

	// ChunkCount returns the number of chunks stored for a source.
	ChunkCount(ctx context.Context, sourceID string) (int, error)

	// HasIngested reports whether a source has at least one chunk.
	HasIngested(ctx context.Context, sourceID string) (bool, error)

	// StopIngestion asks in-flight ingestion to stop at the next chunk boundary.
	StopIngestion()
}
