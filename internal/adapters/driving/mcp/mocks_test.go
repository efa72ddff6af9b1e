package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driving"
	"github.com/custodia-labs/mcpland/internal/core/services"
)

// mockContextStore is a ContextStore that only answers chunk counts and
// source lookups.
type mockContextStore struct {
	counts  map[string]int
	sources map[string]domain.Source
	err     error
}

func (m *mockContextStore) UpsertSource(context.Context, domain.Source) error { return nil }

func (m *mockContextStore) Ingest(context.Context, domain.Source, []string) (driving.IngestStats, error) {
	return driving.IngestStats{}, nil
}

func (m *mockContextStore) Search(context.Context, string, domain.SearchOptions) ([]domain.SearchResult, error) {
	return nil, nil
}

func (m *mockContextStore) Source(_ context.Context, id string) (*domain.Source, error) {
	if m.err != nil {
		return nil, m.err
	}
	source, ok := m.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &source, nil
}

func (m *mockContextStore) ChunkCount(_ context.Context, sourceID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[sourceID], nil
}

func (m *mockContextStore) HasIngested(ctx context.Context, sourceID string) (bool, error) {
	n, err := m.ChunkCount(ctx, sourceID)
	return n > 0, err
}

func (m *mockContextStore) StopIngestion() {}

// testDefinitions returns an echo tool with a schema and a failing tool without one.
func testDefinitions() []driving.ToolDefinition {
	return []driving.ToolDefinition{
		{
			Name:        "a_echo",
			Description: "Echo the message.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"message": {Type: "string"},
				},
				Required: []string{"message"},
			},
			Handler: func(_ context.Context, args json.RawMessage) (*domain.ToolResult, error) {
				var in struct {
					Message string `json:"message"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, err
				}
				return domain.TextResult(in.Message), nil
			},
		},
		{
			Name:        "a_fail",
			Description: "Always fails.",
			Handler: func(context.Context, json.RawMessage) (*domain.ToolResult, error) {
				return nil, errBackend
			},
		},
	}
}

var errBackend = errors.New("backend unavailable")

// newTestServer builds a server over a dispatcher of testDefinitions.
func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Tools == nil {
		dispatcher, err := services.NewDispatcher(testDefinitions())
		require.NoError(t, err)
		ports.Tools = dispatcher
	}
	server, err := NewServer(ports, Info{Name: "McpLand", Description: "Aggregated MCP tools"})
	require.NoError(t, err)
	return server
}

// connect wires server to a client over in-memory transports.
func connect(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

// resultText concatenates the text blocks of a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	var text string
	for _, c := range result.Content {
		tc, ok := c.(*mcp.TextContent)
		require.True(t, ok, "expected text content, got %T", c)
		text += tc.Text
	}
	return text
}
