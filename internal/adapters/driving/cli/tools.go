package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mcpland/internal/core/domain"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List plugins and their tools",
	Long: `Lists every enabled plugin with its tools as the MCP host would see
them. Nothing is fetched; initialization status reflects this process only.`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(toolsCmd)
}

type pluginListing struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Initialized bool              `json:"initialized"`
	Tools       []domain.ToolInfo `json:"tools"`
}

func runTools(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	var listings []pluginListing
	for _, status := range a.registry.Statuses() {
		listing := pluginListing{
			Name:        status.Name,
			Description: status.Description,
			Initialized: status.Initialized,
			Tools:       []domain.ToolInfo{},
		}
		if pt, ok := a.registry.ToolsByPlugin(status.Name); ok {
			for _, def := range pt.Tools {
				listing.Tools = append(listing.Tools, domain.ToolInfo{
					Name:        def.Name,
					Description: def.Description,
				})
			}
		}
		listings = append(listings, listing)
	}

	if toolsJSON {
		data, err := json.MarshalIndent(listings, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal tools: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(listings) == 0 {
		cmd.Println("No plugins enabled.")
		return nil
	}
	for _, listing := range listings {
		cmd.Printf("%s - %s\n", listing.Name, listing.Description)
		for _, tool := range listing.Tools {
			cmd.Printf("  %s: %s\n", tool.Name, tool.Description)
		}
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
