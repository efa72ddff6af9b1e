package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mcpland/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for mcpland resources.
	uriScheme = "mcpland://"
)

// registerResources registers the status resources backed by optional ports.
func (s *Server) registerResources() {
	if s.ports.Registry != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "plugins",
			Name:        "plugins",
			Description: "Registered plugins and their initialization state",
			MIMEType:    "application/json",
		}, s.handlePluginsResource)
	}

	if s.ports.Store != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "sources/{sourceId}",
			Name:        "source",
			Description: "Ingestion state of a context source",
			MIMEType:    "application/json",
		}, s.handleSourceResource)
	}
}

// handlePluginsResource returns the status of every registered plugin.
func (s *Server) handlePluginsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Registry.Statuses())
}

type sourceInfo struct {
	ID        string         `json:"id"`
	Chunks    int            `json:"chunks"`
	Ingested  bool           `json:"ingested"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

// handleSourceResource returns the chunk count and stored metadata of one
// source. A source never ingested reports zero chunks and no metadata.
func (s *Server) handleSourceResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sourceID := extractSourceID(req.Params.URI)
	if sourceID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	count, err := s.ports.Store.ChunkCount(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}

	info := sourceInfo{
		ID:       sourceID,
		Chunks:   count,
		Ingested: count > 0,
	}

	source, err := s.ports.Store.Source(ctx, sourceID)
	switch {
	case err == nil:
		info.Metadata = source.Metadata
		if !source.UpdatedAt.IsZero() {
			info.UpdatedAt = &source.UpdatedAt
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("reading source: %w", err)
	}

	return jsonResource(req.Params.URI, info)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSourceID extracts the source ID from a URI like mcpland://sources/{sourceId}.
func extractSourceID(uri string) string {
	const prefix = uriScheme + "sources/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
