package cli

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcpland/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/plugins"
	"github.com/custodia-labs/mcpland/internal/plugins/angular"
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

// staticFetcher returns text for any location.
type staticFetcher struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (f *staticFetcher) FetchText(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.text, f.err
}

const testContext = "Signals are reactive primitives.\n\nComponents render templates.\n\nRouting maps URLs to components."

// setupTestApp replaces newApp with an app holding the angular plugin over
// an in-memory store. It resets command flags and restores newApp on
// cleanup.
func setupTestApp(t *testing.T, cfg domain.Config) *staticFetcher {
	t.Helper()

	fetcher := &staticFetcher{text: testContext}
	chunks := memory.NewChunkStore()

	catalog := plugins.NewCatalog()
	require.NoError(t, angular.Register(catalog))

	oldNewApp := newApp
	newApp = func(ctx context.Context) (*app, error) {
		return assemble(ctx, appParts{
			root:     t.TempDir(),
			config:   cfg,
			chunks:   chunks,
			embedder: &keywordEmbedder{keyword: "signal"},
			http:     fetcher,
			github:   fetcher,
			catalog:  catalog,
		})
	}

	resetFlags()
	t.Cleanup(func() {
		newApp = oldNewApp
		resetFlags()
	})
	return fetcher
}

// setupFailingApp replaces newApp with one that fails.
func setupFailingApp(t *testing.T, err error) {
	t.Helper()
	oldNewApp := newApp
	newApp = func(context.Context) (*app, error) { return nil, err }
	resetFlags()
	t.Cleanup(func() {
		newApp = oldNewApp
		resetFlags()
	})
}

func resetFlags() {
	toolsJSON = false
	searchJSON = false
	searchLimit = domain.DefaultSearchLimit
	searchSource = ""
	servePort = 0
}

var errConfig = errors.New("parsing config mcpland.json: invalid character")

func boolPtr(b bool) *bool { return &b }
