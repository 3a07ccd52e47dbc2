package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/reef-labs/reefrag/internal/adapters/driven/config/file"
	"github.com/reef-labs/reefrag/internal/core/ports/driving"
)

var (
	contextTopK      int
	contextMaxTokens int
	contextJSON      bool
)

var contextCmd = &cobra.Command{
	Use:   "context [course-id] [query]",
	Short: "Retrieve course material for a question",
	Long: `Retrieves the most relevant chunks of the course's indexed material
and assembles them into a budget-limited prompt fragment with source
attributions.`,
	Args: cobra.ExactArgs(2),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().IntVarP(&contextTopK, "top-k", "k", 0, "number of chunks to consider (default 5)")
	contextCmd.Flags().IntVar(&contextMaxTokens, "max-tokens", 0, "approximate token budget (default 2000)")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	courseID, query := args[0], args[1]

	if ragService == nil {
		return errors.New("rag service not configured")
	}

	opts := driving.ContextOptions{
		TopK:      contextTopK,
		MaxTokens: contextMaxTokens,
	}

	// Flags left at zero fall back to the persisted settings.
	if configStore != nil {
		if opts.TopK == 0 {
			opts.TopK = configStore.GetInt(configfile.KeySearchTopK)
		}
		if opts.MaxTokens == 0 {
			opts.MaxTokens = configStore.GetInt(configfile.KeyContextMaxTokens)
		}
	}

	ragCtx, err := ragService.GetContext(cmd.Context(), query, courseID, opts)
	if err != nil {
		return fmt.Errorf("context retrieval failed: %w", err)
	}

	if contextJSON {
		data, err := json.MarshalIndent(ragCtx, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal context: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if !ragCtx.HasContext() {
		cmd.Println("No relevant material found.")
		return nil
	}

	cmd.Println(ragCtx.FormattedPrompt)
	cmd.Printf("(%d chunks", ragCtx.ChunkCount)
	for i, src := range ragCtx.Sources {
		if i == 0 {
			cmd.Printf("; sources: ")
		} else {
			cmd.Printf(", ")
		}
		cmd.Printf("%s", src.DocumentID)
	}
	cmd.Println(")")

	return nil
}
