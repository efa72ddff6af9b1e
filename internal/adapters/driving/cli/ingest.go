package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch and ingest context for every plugin",
	Long: `Initializes every enabled plugin once and exits. Each tool fetches its
reference context, chunks it and stores embeddings for chunks not already
stored, so repeated runs only add what changed.

Interrupting stops ingestion at the next chunk; chunks stored so far are kept.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck
	a.watchShutdown(ctx)

	initErr := a.registry.InitializeAll(ctx)

	for _, status := range a.registry.Statuses() {
		state := "failed"
		if status.Initialized {
			state = "ready"
		}
		cmd.Printf("%-20s %-8s %s\n", status.Name, state, formatTime(status.InitializedAt))
	}

	summary := a.registry.Summary()
	cmd.Printf("\nInitialized %d of %d plugin(s)\n", summary.Initialized, summary.TotalPlugins)

	if initErr != nil {
		return fmt.Errorf("ingestion failed: %w", initErr)
	}
	return nil
}
