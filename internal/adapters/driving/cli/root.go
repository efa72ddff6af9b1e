// Package cli provides the mcpland command line.
package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mcpland/internal/logger"
)

// Environment variables read by the CLI.
const (
	EnvRoot   = "MCPLAND_ROOT"
	EnvDBPath = "MCPLAND_DB_PATH"
)

// DefaultDBPath is the store location relative to the root directory.
var DefaultDBPath = filepath.Join(".data", "context.sqlite")

var version = "dev"

var (
	rootDir    string
	configPath string
	dbPath     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "mcpland",
	Short: "Aggregated MCP tool server",
	Long: `mcpland hosts a collection of plugins behind a single Model Context
Protocol server. Each plugin contributes tools that search reference
context fetched, chunked and embedded into a local store.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root directory (default $MCPLAND_ROOT or the working directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <root>/mcpland.json or mcpland.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "context store path (default $MCPLAND_DB_PATH or <root>/.data/context.sqlite)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command and the
// MCP server.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// resolveRoot returns the root directory: --root, then $MCPLAND_ROOT,
// then the working directory.
func resolveRoot() (string, error) {
	root := rootDir
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		return os.Getwd()
	}
	return filepath.Abs(root)
}

// resolveDBPath returns the store path: --db, then $MCPLAND_DB_PATH, then
// DefaultDBPath under root.
func resolveDBPath(root string) string {
	if dbPath != "" {
		return dbPath
	}
	if p := os.Getenv(EnvDBPath); p != "" {
		return p
	}
	return filepath.Join(root, DefaultDBPath)
}
