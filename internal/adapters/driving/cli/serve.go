package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/mcpland/internal/adapters/driving/mcp"
	"github.com/custodia-labs/mcpland/internal/logger"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server exposing every enabled tool.

The server starts immediately; plugins fetch and ingest their context in
the background. Tools of plugins still initializing answer from whatever
context is already stored.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead.

Examples:
  # Stdio mode (for MCP hosts)
  mcpland serve

  # HTTP mode (for MCP Inspector, remote access)
  mcpland serve --port 8080

Host configuration:
  {
    "mcpServers": {
      "mcpland": {
        "command": "/path/to/mcpland",
        "args": ["serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(serveCmd)
}

// isTerminal reports whether stdin is an interactive terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck
	a.watchShutdown(ctx)

	server, err := mcp.NewServer(&mcp.Ports{
		Tools:    a.dispatcher,
		Registry: a.registry,
		Store:    a.store,
	}, mcp.Info{
		Name:        a.config.ServerName(),
		Description: a.config.ServerDescription(),
		Version:     version,
	})
	if err != nil {
		return err
	}

	go func() {
		if err := a.registry.InitializeAll(ctx); err != nil {
			logger.Error("Plugin initialization failed: %v", err)
			return
		}
		logger.Info("All plugins initialized")
	}()

	if servePort > 0 {
		addr := fmt.Sprintf(":%d", servePort)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	if isTerminal() {
		logger.Warn("stdin is a terminal; serve expects an MCP host on stdio (use --port for HTTP)")
	}
	return server.Run(ctx)
}
