package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mcpland/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Info describes the server to the host.
type Info struct {
	Name        string
	Description string
	Version     string
}

// Server is the MCP server for mcpland.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports, info Info) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingToolService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if info.Name == "" {
		info.Name = "mcpland"
	}
	if info.Version == "" {
		info.Version = Version
	}

	impl := &mcp.Implementation{
		Name:    info.Name,
		Version: info.Version,
	}
	opts := &mcp.ServerOptions{
		Instructions: info.Description,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, opts),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves over stdio until the context is cancelled or the host
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("Serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over transport.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves streamable HTTP on addr until the context is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("Serving MCP over HTTP on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
