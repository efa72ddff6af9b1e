package services

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/mcpland/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driving"
)

// mockEmbedder implements driven.EmbeddingService for testing.
// Texts listed in vectors get that vector; anything else gets fallback.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	err      error
	calls    atomic.Int32
	// afterCall runs after each successful embedding with the call count.
	afterCall func(n int)
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		vectors:  make(map[string][]float32),
		fallback: []float32{1, 0},
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	vec, ok := m.vectors[text]
	m.mu.Unlock()
	if !ok {
		vec = m.fallback
	}
	n := int(m.calls.Add(1))
	if m.afterCall != nil {
		m.afterCall(n)
	}
	return vec, nil
}

func (m *mockEmbedder) Dimensions() int   { return len(m.fallback) }
func (m *mockEmbedder) ModelName() string { return "mock-embedding" }
func (m *mockEmbedder) Ping(_ context.Context) error {
	return m.err
}
func (m *mockEmbedder) Close() error { return nil }

// failingChunkStore wraps the memory store and fails selected operations.
type failingChunkStore struct {
	*memory.ChunkStore
	upsertErr error
	insertErr error
	listErr   error
}

func (f *failingChunkStore) UpsertSource(ctx context.Context, source domain.Source) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.ChunkStore.UpsertSource(ctx, source)
}

func (f *failingChunkStore) InsertChunk(ctx context.Context, chunk domain.Chunk) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	return f.ChunkStore.InsertChunk(ctx, chunk)
}

func (f *failingChunkStore) ListChunks(ctx context.Context, sourceID string) ([]domain.Chunk, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ChunkStore.ListChunks(ctx, sourceID)
}

// mockFetcher implements driven.ContextFetcher for testing.
type mockFetcher struct {
	text  string
	err   error
	calls atomic.Int32
	urls  []string
	mu    sync.Mutex
}

func (m *mockFetcher) FetchText(_ context.Context, url string) (string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.urls = append(m.urls, url)
	m.mu.Unlock()
	return m.text, m.err
}

// mockTool implements Tool for testing.
type mockTool struct {
	spec      ToolSpec
	initErr   error
	initCalls atomic.Int32
	handle    func(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error)
}

func newMockTool(name, description string) *mockTool {
	return &mockTool{spec: ToolSpec{Name: name, Description: description}}
}

func (m *mockTool) Spec() *ToolSpec { return &m.spec }

func (m *mockTool) Init(_ context.Context) error {
	m.initCalls.Add(1)
	return m.initErr
}

func (m *mockTool) Handle(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error) {
	if m.handle != nil {
		return m.handle(ctx, args)
	}
	return domain.TextResult(m.spec.Name), nil
}

// mockPlugin implements Plugin for testing.
type mockPlugin struct {
	name        string
	description string
	defs        []driving.ToolDefinition
	initErr     error
	initCalls   atomic.Int32
	// release, when set, blocks Init until closed.
	release chan struct{}
}

func newMockPlugin(name string) *mockPlugin {
	return &mockPlugin{name: name, description: "Plugin " + name}
}

func (m *mockPlugin) Name() string        { return m.name }
func (m *mockPlugin) Description() string { return m.description }

func (m *mockPlugin) RegisterTool(tool Tool, _ string) error {
	m.defs = append(m.defs, driving.ToolDefinition{
		Name:        tool.Spec().Name,
		Description: tool.Spec().Description,
		Handler:     tool.Handle,
	})
	return nil
}

func (m *mockPlugin) Init(ctx context.Context) error {
	m.initCalls.Add(1)
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.initErr
}

func (m *mockPlugin) Definitions() []driving.ToolDefinition { return m.defs }

func boolPtr(b bool) *bool { return &b }
