package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driven"
	"github.com/custodia-labs/mcpland/internal/core/services"
)

// Docs search limits.
const (
	MinQueryLength = 2
	MaxDocsLimit   = 50
)

// NoContextFound is returned when a search has no results.
const NoContextFound = "No relevant context found."

// DocsSchema returns the input schema of a documentation search tool.
// subject names what is searched, e.g. "Angular".
func DocsSchema(subject string) *jsonschema.Schema {
	minQuery := MinQueryLength
	minLimit, maxLimit := 1.0, float64(MaxDocsLimit)

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				MinLength:   &minQuery,
				Description: fmt.Sprintf("Natural language query to search for %s context", subject),
			},
			"limit": {
				Type:        "integer",
				Minimum:     &minLimit,
				Maximum:     &maxLimit,
				Description: fmt.Sprintf("Number of chunks to return (default %d)", domain.DefaultSearchLimit),
			},
		},
		Required: []string{"query"},
	}
}

// DocsTool answers natural language queries from one ingested document.
type DocsTool struct {
	*services.BaseTool
	schema *jsonschema.Resolved
}

// Ensure DocsTool implements the interface.
var _ services.Tool = (*DocsTool)(nil)

// NewDocsTool creates a documentation search tool. spec.InputSchema
// defaults to DocsSchema(subject).
func NewDocsTool(spec services.ToolSpec, subject string, deps Deps, fetcher driven.ContextFetcher) (*DocsTool, error) {
	if spec.InputSchema == nil {
		spec.InputSchema = DocsSchema(subject)
	}
	resolved, err := spec.InputSchema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve input schema of %s: %w", spec.Name, err)
	}

	return &DocsTool{
		BaseTool: services.NewBaseTool(spec, deps.ToolDeps(fetcher)),
		schema:   resolved,
	}, nil
}

type docsArgs struct {
	Query string   `json:"query"`
	Limit *float64 `json:"limit,omitempty"`
}

// Handle searches the tool's source and formats the best chunks.
func (t *DocsTool) Handle(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	var instance map[string]any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return domain.ErrorResult("Invalid arguments", err.Error()), nil
	}
	if err := t.schema.Validate(instance); err != nil {
		return domain.ErrorResult("Invalid arguments", err.Error()), nil
	}

	var args docsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return domain.ErrorResult("Invalid arguments", err.Error()), nil
	}

	limit := 0
	if args.Limit != nil {
		limit = int(*args.Limit)
	}

	results, err := t.SearchContext(ctx, args.Query, limit)
	if err != nil {
		return nil, err
	}
	return domain.TextResult(FormatResults(results)), nil
}

// FormatResults renders results as numbered chunk blocks separated by
// blank lines, or NoContextFound when there are none.
func FormatResults(results []domain.SearchResult) string {
	if len(results) == 0 {
		return NoContextFound
	}

	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("[[Chunk %d | score=%.3f]]\n%s", i+1, r.Score, r.Content)
	}
	return strings.Join(blocks, "\n\n")
}
