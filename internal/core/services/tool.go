package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/custodia-labs/mcpland/internal/chunker"
	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driven"
	"github.com/custodia-labs/mcpland/internal/core/ports/driving"
	"github.com/custodia-labs/mcpland/internal/logger"
	"github.com/custodia-labs/mcpland/internal/normalisers/html"
)

// ToolSpec describes a tool. Name, PluginID, ToolID and SourceID are
// normalised when the tool is registered into a plugin.
type ToolSpec struct {
	// Name is the tool name. Registration prefixes it with "<plugin>-".
	Name string

	// Description tells the host what the tool does.
	Description string

	// InputSchema validates call arguments. Must describe an object.
	InputSchema *jsonschema.Schema

	// SourceID identifies the tool's context in the store.
	// Defaults to "<plugin>-<tool>-context".
	SourceID string

	// PluginID is the owning plugin. Defaults to the registering plugin.
	PluginID string

	// ToolID is the tool's identifier inside its plugin. Defaults to the
	// identifier it was discovered under, then to Name.
	ToolID string

	// ContextURL is where the tool's reference text is fetched from.
	ContextURL string

	// Chunking configures how fetched context is split.
	Chunking []chunker.Option
}

// Tool is one capability exposed by a plugin.
type Tool interface {
	// Spec returns the tool's mutable spec.
	Spec() *ToolSpec

	// Init fetches, chunks and ingests the tool's context.
	Init(ctx context.Context) error

	// Handle answers a call with raw JSON arguments.
	Handle(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error)
}

// ToolDeps are the collaborators a BaseTool works with.
type ToolDeps struct {
	Store   driving.ContextStore
	Fetcher driven.ContextFetcher
	Config  domain.Config

	// Root is the project root the configured source folder is relative to.
	Root string
}

// BaseTool implements the context lifecycle shared by tools. Concrete tools
// embed it and provide Handle.
type BaseTool struct {
	spec ToolSpec
	deps ToolDeps
}

// NewBaseTool creates a BaseTool.
func NewBaseTool(spec ToolSpec, deps ToolDeps) *BaseTool {
	return &BaseTool{spec: spec, deps: deps}
}

// Spec returns the tool's spec.
func (t *BaseTool) Spec() *ToolSpec {
	return &t.spec
}

// SourceID returns the store source the tool ingests into.
func (t *BaseTool) SourceID() string {
	if t.spec.SourceID != "" {
		return t.spec.SourceID
	}
	return fmt.Sprintf("%s-%s-context", t.spec.PluginID, t.toolID())
}

// Init fetches the tool's context, chunks it and ingests it. Chunks
// already stored are skipped, so repeated runs only add what is new.
// A tool disabled by configuration does nothing.
func (t *BaseTool) Init(ctx context.Context) error {
	pluginID, toolID := t.spec.PluginID, t.toolID()

	if pluginID != "" && t.spec.ToolID != "" && !t.deps.Config.IsToolEnabled(pluginID, toolID) {
		logger.Warn("Tool disabled by config: %s/%s", pluginID, toolID)
		return nil
	}
	if t.deps.Store == nil {
		return errors.New("tool has no context store")
	}
	if t.deps.Fetcher == nil {
		return errors.New("tool has no context fetcher")
	}

	logger.Info("Initializing %s/%s...", pluginID, toolID)

	text, err := t.deps.Fetcher.FetchText(ctx, t.spec.ContextURL)
	if err != nil {
		return fmt.Errorf("fetch context for %s: %w", t.spec.Name, err)
	}
	logger.Debug("Fetched context for %s with length %d", t.spec.Name, len(text))

	metadata := map[string]any{
		"name": t.spec.Name,
		"url":  t.spec.ContextURL,
	}
	if html.IsHTML(text) {
		doc, err := html.Parse(text)
		if err != nil {
			return fmt.Errorf("parse HTML context for %s: %w", t.spec.Name, err)
		}
		if title := doc.Title(); title != "" {
			metadata["title"] = title
		}
		text = doc.Markdown(t.spec.ContextURL)
		logger.Debug("Converted HTML context for %s to %d bytes of markdown", t.spec.Name, len(text))
	}

	chunks := chunker.New(t.spec.Chunking...).Split(text)
	logger.Debug("Ingesting %d chunks for %s/%s", len(chunks), pluginID, toolID)

	sourceID := t.SourceID()
	source := domain.Source{
		ID:       sourceID,
		Metadata: metadata,
	}
	stats, err := t.deps.Store.Ingest(ctx, source, chunks)
	if err != nil {
		return fmt.Errorf("ingest context for %s: %w", t.spec.Name, err)
	}

	logger.Info("Ingested %s: %d new, %d already stored", sourceID, stats.Inserted, stats.Skipped)
	return nil
}

// SearchContext searches the tool's own source.
func (t *BaseTool) SearchContext(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if t.deps.Store == nil {
		return nil, errors.New("tool has no context store")
	}
	return t.deps.Store.Search(ctx, query, domain.SearchOptions{
		Limit:    limit,
		SourceID: t.SourceID(),
	})
}

// ToolPath returns the tool's directory, <root>/<source>/<plugin>/tools/<tool>.
// File-backed tools read local context from here.
func (t *BaseTool) ToolPath() string {
	return filepath.Join(t.deps.Root, t.deps.Config.SourceFolder(), t.spec.PluginID, "tools", t.toolID())
}

func (t *BaseTool) toolID() string {
	if t.spec.ToolID != "" {
		return t.spec.ToolID
	}
	return t.spec.Name
}
