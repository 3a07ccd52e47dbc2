package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [course-id] [query]",
	Short: "Rank a course's documents by relevance",
	Long: `Ranks the course's indexed documents against the query using hybrid
search: a keyword pass over names and text fused with a semantic pass
over the vector index. Without an embedding server the ranking is
keyword-only.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	courseID, query := args[0], args[1]

	if searchService == nil || vectorStore == nil {
		return errors.New("search service not configured")
	}

	candidates, err := vectorStore.Documents(cmd.Context(), courseID)
	if err != nil {
		return fmt.Errorf("loading candidates: %w", err)
	}

	ranked, err := searchService.Search(cmd.Context(), query, candidates, courseID)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(ranked, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(ranked) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	names := make(map[string]string, len(candidates))
	for _, doc := range candidates {
		names[doc.ID] = doc.Name
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, documentID := range ranked {
		name := names[documentID]
		if name == "" {
			name = documentID
		}
		cmd.Printf("  [%d] %s (%s)\n", i+1, name, documentID)
	}

	return nil
}
