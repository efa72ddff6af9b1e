package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcpland/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mcpland/internal/core/domain"
)

func newTestEmbedStore() (*EmbedStore, *memory.ChunkStore, *mockEmbedder) {
	chunks := memory.NewChunkStore()
	embedder := newMockEmbedder()
	return NewEmbedStore(chunks, embedder), chunks, embedder
}

func TestEmbedStore_UpsertSource_BumpsUpdatedAt(t *testing.T) {
	store, chunks, _ := newTestEmbedStore()
	ctx := context.Background()

	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	err := store.UpsertSource(ctx, domain.Source{ID: "src", Metadata: map[string]any{"name": "a"}})
	require.NoError(t, err)

	later := fixed.Add(time.Minute)
	store.now = func() time.Time { return later }
	err = store.UpsertSource(ctx, domain.Source{ID: "src", Metadata: map[string]any{"name": "b"}})
	require.NoError(t, err)

	got, err := chunks.GetSource(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Metadata["name"])
	assert.True(t, got.UpdatedAt.Equal(later))
}

func TestEmbedStore_Ingest(t *testing.T) {
	store, chunks, embedder := newTestEmbedStore()
	ctx := context.Background()

	stats, err := store.Ingest(ctx, domain.Source{ID: "src"}, []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Inserted)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, int32(3), embedder.calls.Load())

	stored, err := chunks.ListChunks(ctx, "src")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, c := range stored {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, domain.HashContent(c.Content), c.ContentHash)
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, "src", c.SourceID)
	}
	assert.NotEqual(t, stored[0].ID, stored[1].ID)
}

func TestEmbedStore_Ingest_Idempotent(t *testing.T) {
	store, _, embedder := newTestEmbedStore()
	ctx := context.Background()
	source := domain.Source{ID: "src"}

	first, err := store.Ingest(ctx, source, []string{"same", "same"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)
	assert.Equal(t, 1, first.Skipped)

	second, err := store.Ingest(ctx, source, []string{"same", "same"})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Skipped)

	count, err := store.ChunkCount(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, int32(1), embedder.calls.Load(), "skipped chunks are not re-embedded")
}

func TestEmbedStore_Ingest_IndexAdvancesOverSkips(t *testing.T) {
	store, chunks, _ := newTestEmbedStore()
	ctx := context.Background()

	_, err := store.Ingest(ctx, domain.Source{ID: "src"}, []string{"one", "one", "two"})
	require.NoError(t, err)

	stored, err := chunks.ListChunks(ctx, "src")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 0, stored[0].Index)
	assert.Equal(t, 2, stored[1].Index)
}

func TestEmbedStore_Ingest_HashScopedPerSource(t *testing.T) {
	store, _, _ := newTestEmbedStore()
	ctx := context.Background()

	_, err := store.Ingest(ctx, domain.Source{ID: "a"}, []string{"shared"})
	require.NoError(t, err)
	stats, err := store.Ingest(ctx, domain.Source{ID: "b"}, []string{"shared"})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Inserted)
}

func TestEmbedStore_Ingest_StopAndResume(t *testing.T) {
	store, _, embedder := newTestEmbedStore()
	ctx := context.Background()
	source := domain.Source{ID: "src"}
	chunks := []string{"c0", "c1", "c2", "c3", "c4"}

	embedder.afterCall = func(n int) {
		if n == 2 {
			store.StopIngestion()
		}
	}

	stats, err := store.Ingest(ctx, source, chunks)
	require.ErrorIs(t, err, domain.ErrIngestionCancelled)
	assert.Equal(t, 2, stats.Inserted, "the in-flight chunk completes")
	assert.True(t, store.Stopped())

	ingested, err := store.HasIngested(ctx, "src")
	require.NoError(t, err)
	assert.True(t, ingested, "partial ingestion stays persisted")

	store.Resume()
	stats, err = store.Ingest(ctx, source, chunks)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Inserted)
	assert.Equal(t, 2, stats.Skipped)

	count, err := store.ChunkCount(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestEmbedStore_Ingest_StoppedBeforeStart(t *testing.T) {
	store, _, embedder := newTestEmbedStore()
	store.StopIngestion()

	stats, err := store.Ingest(context.Background(), domain.Source{ID: "src"}, []string{"x"})

	require.ErrorIs(t, err, domain.ErrIngestionCancelled)
	assert.Equal(t, 0, stats.Inserted)
	assert.Equal(t, int32(0), embedder.calls.Load())
}

func TestEmbedStore_Ingest_ContextCancelled(t *testing.T) {
	store, _, _ := newTestEmbedStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Ingest(ctx, domain.Source{ID: "src"}, []string{"x"})

	require.ErrorIs(t, err, domain.ErrIngestionCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedStore_Ingest_EmbeddingErrorPropagates(t *testing.T) {
	store, _, embedder := newTestEmbedStore()
	embedder.err = errors.New("rate limited")

	stats, err := store.Ingest(context.Background(), domain.Source{ID: "src"}, []string{"x", "y"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, 0, stats.Inserted)
}

func TestEmbedStore_Ingest_StorageErrorsPropagate(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert", func(t *testing.T) {
		failing := &failingChunkStore{ChunkStore: memory.NewChunkStore(), upsertErr: errors.New("disk full")}
		store := NewEmbedStore(failing, newMockEmbedder())

		_, err := store.Ingest(ctx, domain.Source{ID: "src"}, []string{"x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("insert", func(t *testing.T) {
		failing := &failingChunkStore{ChunkStore: memory.NewChunkStore(), insertErr: errors.New("locked")}
		store := NewEmbedStore(failing, newMockEmbedder())

		_, err := store.Ingest(ctx, domain.Source{ID: "src"}, []string{"x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked")
	})
}

func TestEmbedStore_Ingest_NoEmbedderNeededForKnownChunks(t *testing.T) {
	chunks := memory.NewChunkStore()
	ctx := context.Background()

	_, err := NewEmbedStore(chunks, newMockEmbedder()).Ingest(ctx, domain.Source{ID: "src"}, []string{"x"})
	require.NoError(t, err)

	stats, err := NewEmbedStore(chunks, nil).Ingest(ctx, domain.Source{ID: "src"}, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)

	_, err = NewEmbedStore(chunks, nil).Ingest(ctx, domain.Source{ID: "src"}, []string{"new"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbedStore_Search_Ranking(t *testing.T) {
	store, _, embedder := newTestEmbedStore()
	ctx := context.Background()

	embedder.vectors["query"] = []float32{1, 0}
	embedder.vectors["weak"] = []float32{0.1, float32(math.Sqrt(1 - 0.01))}
	embedder.vectors["strong"] = []float32{0.9, float32(math.Sqrt(1 - 0.81))}

	_, err := store.Ingest(ctx, domain.Source{ID: "src"}, []string{"weak", "strong"})
	require.NoError(t, err)

	results, err := store.Search(ctx, "query", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "strong", results[0].Content)
	assert.InDelta(t, 0.9, results[0].Score, 1e-5)
	assert.Equal(t, 1, results[0].Index)
	assert.Equal(t, "src", results[0].SourceID)
	assert.Equal(t, "weak", results[1].Content)
	assert.InDelta(t, 0.1, results[1].Score, 1e-5)
}

func TestEmbedStore_Search_StableTies(t *testing.T) {
	store, _, _ := newTestEmbedStore()
	ctx := context.Background()

	_, err := store.Ingest(ctx, domain.Source{ID: "src"}, []string{"first", "second", "third"})
	require.NoError(t, err)

	results, err := store.Search(ctx, "anything", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Content)
	assert.Equal(t, "second", results[1].Content)
	assert.Equal(t, "third", results[2].Content)
}

func TestEmbedStore_Search_LimitAndDefault(t *testing.T) {
	store, _, _ := newTestEmbedStore()
	ctx := context.Background()

	chunks := make([]string, 30)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("chunk %d", i)
	}
	_, err := store.Ingest(ctx, domain.Source{ID: "src"}, chunks)
	require.NoError(t, err)

	results, err := store.Search(ctx, "q", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, domain.DefaultSearchLimit)

	results, err = store.Search(ctx, "q", domain.SearchOptions{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestEmbedStore_Search_FiltersBySource(t *testing.T) {
	store, _, _ := newTestEmbedStore()
	ctx := context.Background()

	_, err := store.Ingest(ctx, domain.Source{ID: "a"}, []string{"from a"})
	require.NoError(t, err)
	_, err = store.Ingest(ctx, domain.Source{ID: "b"}, []string{"from b"})
	require.NoError(t, err)

	results, err := store.Search(ctx, "q", domain.SearchOptions{SourceID: "b"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "from b", results[0].Content)

	all, err := store.Search(ctx, "q", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEmbedStore_Search_SkipsMismatchedVectors(t *testing.T) {
	store, chunks, _ := newTestEmbedStore()
	ctx := context.Background()

	require.NoError(t, chunks.InsertChunk(ctx, domain.Chunk{ID: "bad", SourceID: "src", Content: "bad", Embedding: []float32{1, 2, 3}}))
	require.NoError(t, chunks.InsertChunk(ctx, domain.Chunk{ID: "empty", SourceID: "src", Content: "empty"}))
	require.NoError(t, chunks.InsertChunk(ctx, domain.Chunk{ID: "good", SourceID: "src", Content: "good", Embedding: []float32{1, 0}}))

	results, err := store.Search(ctx, "q", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Content)
}

func TestEmbedStore_Search_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no embedder", func(t *testing.T) {
		store := NewEmbedStore(memory.NewChunkStore(), nil)
		_, err := store.Search(ctx, "q", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("list failure", func(t *testing.T) {
		failing := &failingChunkStore{ChunkStore: memory.NewChunkStore(), listErr: errors.New("io error")}
		store := NewEmbedStore(failing, newMockEmbedder())
		_, err := store.Search(ctx, "q", domain.SearchOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "io error")
	})
}

func TestEmbedStore_ChunkCount_MissingSource(t *testing.T) {
	store, _, _ := newTestEmbedStore()
	ctx := context.Background()

	count, err := store.ChunkCount(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	ingested, err := store.HasIngested(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ingested)
}

func TestEmbedStore_Source(t *testing.T) {
	store, _, _ := newTestEmbedStore()
	ctx := context.Background()

	_, err := store.Ingest(ctx, domain.Source{ID: "src", Metadata: map[string]any{"name": "docs"}}, []string{"a"})
	require.NoError(t, err)

	source, err := store.Source(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, "docs", source.Metadata["name"])
	assert.False(t, source.UpdatedAt.IsZero())

	_, err = store.Source(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
