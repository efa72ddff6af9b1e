// Package builtin assembles the catalog of plugins compiled into mcpland.
package builtin

import (
	"github.com/custodia-labs/mcpland/internal/plugins"
	"github.com/custodia-labs/mcpland/internal/plugins/angular"
	"github.com/custodia-labs/mcpland/internal/plugins/gosdk"
)

// Catalog returns a catalog holding every built-in plugin.
func Catalog() (*plugins.Catalog, error) {
	catalog := plugins.NewCatalog()
	for _, register := range []func(*plugins.Catalog) error{
		angular.Register,
		gosdk.Register,
	} {
		if err := register(catalog); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}
