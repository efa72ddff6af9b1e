package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/plugins"
)

var (
	searchLimit  int
	searchSource string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested context",
	Long: `Ranks stored chunks by cosine similarity to the query embedding.
Only context already ingested is searched; run "mcpland ingest" first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchSource, "source", "s", "", "restrict to one source ID")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	if query == "" {
		return errors.New("query must not be empty")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	results, err := a.store.Search(cmd.Context(), query, domain.SearchOptions{
		Limit:    searchLimit,
		SourceID: searchSource,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	cmd.Println(plugins.FormatResults(results))
	return nil
}
