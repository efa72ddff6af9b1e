package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Chunks are kept in insertion order.
type ChunkStore struct {
	mu      sync.RWMutex
	sources map[string]domain.Source
	chunks  []domain.Chunk
	hashes  map[string]map[string]struct{}
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		sources: make(map[string]domain.Source),
		hashes:  make(map[string]map[string]struct{}),
	}
}

// UpsertSource inserts or replaces a source.
func (s *ChunkStore) UpsertSource(_ context.Context, source domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	source.Metadata = maps.Clone(source.Metadata)
	s.sources[source.ID] = source
	return nil
}

// GetSource retrieves a source by ID.
func (s *ChunkStore) GetSource(_ context.Context, id string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	source, ok := s.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	source.Metadata = maps.Clone(source.Metadata)
	return &source, nil
}

// HasChunkHash reports whether sourceID already holds a chunk with hash.
func (s *ChunkStore) HasChunkHash(_ context.Context, sourceID, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[sourceID][hash]
	return ok, nil
}

// InsertChunk appends a chunk.
func (s *ChunkStore) InsertChunk(_ context.Context, chunk domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chunks {
		if s.chunks[i].ID == chunk.ID {
			return domain.ErrAlreadyExists
		}
	}
	chunk.Embedding = slices.Clone(chunk.Embedding)
	s.chunks = append(s.chunks, chunk)
	if s.hashes[chunk.SourceID] == nil {
		s.hashes[chunk.SourceID] = make(map[string]struct{})
	}
	s.hashes[chunk.SourceID][chunk.ContentHash] = struct{}{}
	return nil
}

// ListChunks returns the chunks of sourceID, or of every source when
// sourceID is empty, in insertion order.
func (s *ChunkStore) ListChunks(_ context.Context, sourceID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for i := range s.chunks {
		if sourceID == "" || s.chunks[i].SourceID == sourceID {
			chunk := s.chunks[i]
			chunk.Embedding = slices.Clone(chunk.Embedding)
			result = append(result, chunk)
		}
	}
	return result, nil
}

// CountChunks returns the number of chunks stored for sourceID.
func (s *ChunkStore) CountChunks(_ context.Context, sourceID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for i := range s.chunks {
		if s.chunks[i].SourceID == sourceID {
			count++
		}
	}
	return count, nil
}

// Close is a no-op for the in-memory store.
func (s *ChunkStore) Close() error {
	return nil
}
