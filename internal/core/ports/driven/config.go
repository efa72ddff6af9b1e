package driven

import "github.com/custodia-labs/mcpland/internal/core/domain"

// ConfigLoader provides the mcpland configuration document.
// The document is read once; it is re-read only by an explicit Reload.
type ConfigLoader interface {
	// Config returns the loaded configuration.
	Config() domain.Config

	// Reload re-reads the configuration from storage.
	Reload() error

	// Path returns the configuration file path.
	Path() string
}
