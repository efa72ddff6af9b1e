package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/mcpland/internal/adapters/driven/ai"
	"github.com/custodia-labs/mcpland/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mcpland/internal/adapters/driven/github"
	"github.com/custodia-labs/mcpland/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driven"
	"github.com/custodia-labs/mcpland/internal/core/services"
	"github.com/custodia-labs/mcpland/internal/fetch"
	"github.com/custodia-labs/mcpland/internal/logger"
	"github.com/custodia-labs/mcpland/internal/plugins"
	"github.com/custodia-labs/mcpland/internal/plugins/builtin"
)

// EnvGitHubToken authenticates GitHub-backed context sources.
const EnvGitHubToken = "GITHUB_TOKEN"

// app is the wired process: store, registry and dispatcher.
type app struct {
	config     domain.Config
	store      *services.EmbedStore
	stores     *services.StoreGroup
	registry   *services.Registry
	dispatcher *services.Dispatcher
	closers    []func() error
}

// appParts are the collaborators assemble wires together.
type appParts struct {
	root     string
	config   domain.Config
	chunks   driven.ChunkStore
	embedder driven.EmbeddingService
	http     driven.ContextFetcher
	github   driven.ContextFetcher
	catalog  *plugins.Catalog
}

// newApp builds the app for a command. Tests replace it.
var newApp = buildApp

// buildApp loads configuration and opens the real adapters.
func buildApp(ctx context.Context) (*app, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, fmt.Errorf("resolving root directory: %w", err)
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = file.Locate(root)
	}
	cfgStore, err := file.NewConfigStore(cfgPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded config from %s", cfgStore.Path())

	settings := ai.SettingsFromEnv(os.Getenv)
	embedder, err := openEmbedder(ctx, &settings)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(resolveDBPath(root))
	if err != nil {
		if embedder != nil {
			embedder.Close() //nolint:errcheck
		}
		return nil, err
	}
	logger.Debug("Opened context store at %s", store.Path())

	ghClient, err := github.NewClient(ctx, os.Getenv(EnvGitHubToken))
	if err != nil {
		store.Close() //nolint:errcheck
		return nil, err
	}

	catalog, err := builtin.Catalog()
	if err != nil {
		store.Close() //nolint:errcheck
		return nil, err
	}

	a, err := assemble(ctx, appParts{
		root:     root,
		config:   cfgStore.Config(),
		chunks:   store.ChunkStore(),
		embedder: embedder,
		http:     fetch.New(),
		github:   ghClient,
		catalog:  catalog,
	})
	if err != nil {
		store.Close() //nolint:errcheck
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	if embedder != nil {
		a.closers = append(a.closers, embedder.Close)
	}
	return a, nil
}

// openEmbedder creates the configured embedding service and checks that it
// answers. An unreachable service is kept, since it may come up later, but
// is reported at startup.
func openEmbedder(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	embedder, err := ai.CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("creating embedding service: %w", err)
	}
	if embedder == nil {
		logger.Warn("No embedding provider configured; set %s to enable context search", ai.EnvOpenAIKey)
		return nil, nil
	}
	if err := ai.ValidateEmbeddingService(ctx, embedder); err != nil {
		logger.Warn("%v; context search fails until it is reachable", err)
	}
	return embedder, nil
}

// assemble loads every enabled plugin from the catalog into a registry and
// builds the dispatcher over their tools.
func assemble(ctx context.Context, parts appParts) (*app, error) {
	store := services.NewEmbedStore(parts.chunks, parts.embedder)

	stores := services.NewStoreGroup()
	stores.Add(store)

	deps := plugins.Deps{
		Store:  store,
		HTTP:   parts.http,
		GitHub: parts.github,
		Config: parts.config,
		Root:   parts.root,
	}

	registry := services.NewRegistry()
	loaded, err := plugins.NewLoader(parts.catalog, deps).Load(ctx, registry)
	if err != nil {
		return nil, fmt.Errorf("loading plugins: %w", err)
	}
	logger.Debug("Loaded %d plugin(s)", len(loaded))

	dispatcher, err := services.NewDispatcher(registry.AllTools())
	if err != nil {
		return nil, fmt.Errorf("building tool dispatcher: %w", err)
	}

	return &app{
		config:     parts.config,
		store:      store,
		stores:     stores,
		registry:   registry,
		dispatcher: dispatcher,
	}, nil
}

// watchShutdown stops in-flight ingestion once ctx is cancelled.
func (a *app) watchShutdown(ctx context.Context) {
	go func() {
		<-ctx.Done()
		a.stores.Shutdown()
	}()
}

// Close releases the app's adapters.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
