package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driven"
	"github.com/custodia-labs/mcpland/internal/core/ports/driving"
	"github.com/custodia-labs/mcpland/internal/logger"
)

// Ensure EmbedStore implements the interface.
var _ driving.ContextStore = (*EmbedStore)(nil)

// EmbedStore ingests content-addressed chunks and serves similarity search.
//
// Within one Ingest call chunks are handled strictly in order: hash check,
// embed, insert. Writes rely on the chunk store's own serialisation.
type EmbedStore struct {
	store    driven.ChunkStore
	embedder driven.EmbeddingService
	stopped  atomic.Bool
	now      func() time.Time
}

// NewEmbedStore creates an embed store. The embedder may be nil, in which
// case any operation that needs a vector fails with
// domain.ErrEmbeddingUnavailable.
func NewEmbedStore(store driven.ChunkStore, embedder driven.EmbeddingService) *EmbedStore {
	return &EmbedStore{
		store:    store,
		embedder: embedder,
		now:      time.Now,
	}
}

// UpsertSource inserts the source or replaces its metadata. UpdatedAt is
// always set to the current time.
func (s *EmbedStore) UpsertSource(ctx context.Context, source domain.Source) error {
	source.UpdatedAt = s.now()
	if err := s.store.UpsertSource(ctx, source); err != nil {
		return fmt.Errorf("upsert source %s: %w", source.ID, err)
	}
	return nil
}

// Ingest upserts source then stores each chunk not already present for it.
//
// A chunk whose content hash is already stored for the source is skipped
// without being embedded. The index of every candidate advances, so stored
// indexes may have gaps. Ingestion stops at the next chunk boundary once
// StopIngestion is called or ctx is done; everything inserted so far stays
// persisted and a later call with the same chunks resumes.
func (s *EmbedStore) Ingest(ctx context.Context, source domain.Source, chunks []string) (driving.IngestStats, error) {
	stats := driving.IngestStats{Total: len(chunks)}

	if err := s.UpsertSource(ctx, source); err != nil {
		return stats, err
	}

	for i, content := range chunks {
		if s.stopped.Load() {
			logger.Warn("Ingestion of %s stopped after %d of %d chunks", source.ID, i, len(chunks))
			return stats, domain.ErrIngestionCancelled
		}
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("%w: %w", domain.ErrIngestionCancelled, err)
		}

		hash := domain.HashContent(content)
		exists, err := s.store.HasChunkHash(ctx, source.ID, hash)
		if err != nil {
			return stats, fmt.Errorf("check chunk %d of %s: %w", i, source.ID, err)
		}
		if exists {
			stats.Skipped++
			continue
		}

		vector, err := s.embed(ctx, content)
		if err != nil {
			return stats, fmt.Errorf("embed chunk %d of %s: %w", i, source.ID, err)
		}

		chunk := domain.Chunk{
			ID:          uuid.NewString(),
			SourceID:    source.ID,
			Index:       i,
			Content:     content,
			ContentHash: hash,
			Embedding:   vector,
			CreatedAt:   s.now(),
		}
		if err := s.store.InsertChunk(ctx, chunk); err != nil {
			return stats, fmt.Errorf("insert chunk %d of %s: %w", i, source.ID, err)
		}
		stats.Inserted++
	}

	logger.Debug("Ingested %s: %d inserted, %d skipped of %d",
		source.ID, stats.Inserted, stats.Skipped, stats.Total)
	return stats, nil
}

// Search embeds query once and ranks stored chunks by cosine similarity.
// Ties keep storage order. Chunks whose vectors cannot be compared with the
// query vector are left out.
func (s *EmbedStore) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	vector, err := s.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := s.store.ListChunks(ctx, opts.SourceID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(chunks))
	for i := range chunks {
		score, ok := CosineSimilarity(vector, chunks[i].Embedding)
		if !ok {
			logger.Debug("Skipping chunk %s: embedding has %d dimensions, query has %d",
				chunks[i].ID, len(chunks[i].Embedding), len(vector))
			continue
		}
		results = append(results, domain.SearchResult{
			Content:  chunks[i].Content,
			Score:    score,
			SourceID: chunks[i].SourceID,
			Index:    chunks[i].Index,
		})
	}

	slices.SortStableFunc(results, func(a, b domain.SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if limit := opts.EffectiveLimit(); len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Source returns the stored source with the given ID.
func (s *EmbedStore) Source(ctx context.Context, id string) (*domain.Source, error) {
	source, err := s.store.GetSource(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", id, err)
	}
	return source, nil
}

// ChunkCount returns the number of chunks stored for sourceID.
func (s *EmbedStore) ChunkCount(ctx context.Context, sourceID string) (int, error) {
	count, err := s.store.CountChunks(ctx, sourceID)
	if err != nil {
		return 0, fmt.Errorf("count chunks of %s: %w", sourceID, err)
	}
	return count, nil
}

// HasIngested reports whether sourceID has at least one stored chunk.
func (s *EmbedStore) HasIngested(ctx context.Context, sourceID string) (bool, error) {
	count, err := s.ChunkCount(ctx, sourceID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// StopIngestion makes in-flight and future Ingest calls stop at the next
// chunk boundary. An embedding call already in progress completes.
func (s *EmbedStore) StopIngestion() {
	s.stopped.Store(true)
}

// Resume clears a previous StopIngestion.
func (s *EmbedStore) Resume() {
	s.stopped.Store(false)
}

// Stopped reports whether StopIngestion is in effect.
func (s *EmbedStore) Stopped() bool {
	return s.stopped.Load()
}

func (s *EmbedStore) embed(ctx context.Context, text string) ([]float32, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	return s.embedder.Embed(ctx, text)
}
