package plugins

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/custodia-labs/mcpland/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/services"
)

// keywordEmbedder maps texts containing keyword to [1,0] and everything
// else to [0,1].
type keywordEmbedder struct {
	keyword string
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.Contains(strings.ToLower(text), e.keyword) {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func (e *keywordEmbedder) Dimensions() int              { return 2 }
func (e *keywordEmbedder) ModelName() string            { return "keyword" }
func (e *keywordEmbedder) Ping(_ context.Context) error { return nil }
func (e *keywordEmbedder) Close() error                 { return nil }

// staticFetcher returns text for any location and records what was asked.
type staticFetcher struct {
	mu        sync.Mutex
	text      string
	err       error
	locations []string
}

func (f *staticFetcher) FetchText(_ context.Context, location string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations = append(f.locations, location)
	return f.text, f.err
}

func newTestDeps(text string) (Deps, *staticFetcher) {
	fetcher := &staticFetcher{text: text}
	store := services.NewEmbedStore(memory.NewChunkStore(), &keywordEmbedder{keyword: "signal"})
	return Deps{Store: store, HTTP: fetcher, GitHub: fetcher}, fetcher
}

// stubTool is a minimal services.Tool.
type stubTool struct {
	spec services.ToolSpec
}

func newStubTool(name string) *stubTool {
	return &stubTool{spec: services.ToolSpec{Name: name, Description: name + " tool"}}
}

func (t *stubTool) Spec() *services.ToolSpec      { return &t.spec }
func (t *stubTool) Init(_ context.Context) error { return nil }
func (t *stubTool) Handle(_ context.Context, _ json.RawMessage) (*domain.ToolResult, error) {
	return domain.TextResult(t.spec.Name), nil
}

func stubToolFactory(name string) ToolFactory {
	return func(Deps) (services.Tool, error) {
		return newStubTool(name), nil
	}
}

func namedPlugin(name string) PluginFactory {
	return func(cfg domain.Config) (services.Plugin, error) {
		return services.NewBasePlugin(services.PluginSpec{Name: name, Description: name + " plugin"}, cfg), nil
	}
}

func boolPtr(b bool) *bool {
	return &b
}
