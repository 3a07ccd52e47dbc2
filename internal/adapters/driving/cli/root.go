// Package cli provides the cobra command tree for reefrag.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/reef-labs/reefrag/internal/adapters/driven/config/file"
	"github.com/reef-labs/reefrag/internal/adapters/driven/embedding/remote"
	"github.com/reef-labs/reefrag/internal/adapters/driven/storage/sqlite"
	"github.com/reef-labs/reefrag/internal/core/ports/driven"
	"github.com/reef-labs/reefrag/internal/core/ports/driving"
	"github.com/reef-labs/reefrag/internal/core/services"
	"github.com/reef-labs/reefrag/internal/logger"
	"github.com/reef-labs/reefrag/internal/postprocessors/chunker"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	flagVerbose      bool
	flagConfigDir    string
	flagDataDir      string
	flagEmbeddingURL string
)

// Services wired by initServices. Tests preset these and set
// servicesInitialized to skip the real wiring.
var (
	configStore      driven.ConfigStore
	vectorStore      driven.VectorStore
	embeddingService driven.EmbeddingService
	ragService       driving.RAGService
	searchService    driving.HybridSearchService

	servicesInitialized bool
)

var rootCmd = &cobra.Command{
	Use:   "reefrag",
	Short: "Course material indexing and retrieval",
	Long: `reefrag chunks, embeds, and indexes study documents per course, then
retrieves budget-limited context for questions and ranks documents with
hybrid keyword plus semantic search.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.reefrag)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.reefrag/data)")
	rootCmd.PersistentFlags().StringVar(&flagEmbeddingURL, "embedding-url", "", "embedding server base URL (overrides config)")
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// initServices wires stores and services before any command runs.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	if servicesInitialized {
		return nil
	}
	if cmd.Name() == "version" {
		return nil
	}
	servicesInitialized = true

	cfg, err := configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = cfg.GetString(configfile.KeyDataDir)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	vectorStore = store

	embeddingService = buildEmbeddingService(cfg)
	if embeddingService != nil {
		if err := vectorStore.Initialize(context.Background(), embeddingService.ModelVersion()); err != nil {
			return fmt.Errorf("initializing vector store: %w", err)
		}
	}

	ragService = services.NewRAGService(chunker.New(), embeddingService, vectorStore)
	searchService = services.NewHybridSearchService(vectorStore, embeddingService)

	return nil
}

// buildEmbeddingService constructs the remote embedding client, or nil
// when no server is configured. Without it indexing is skipped and search
// degrades to the keyword pass.
func buildEmbeddingService(cfg driven.ConfigStore) driven.EmbeddingService {
	baseURL := flagEmbeddingURL
	if baseURL == "" {
		baseURL = cfg.GetString(configfile.KeyEmbeddingBaseURL)
	}
	if baseURL == "" {
		logger.Debug("No embedding server configured, semantic features disabled")
		return nil
	}

	return remote.NewEmbeddingService(remote.Config{
		BaseURL:   baseURL,
		Model:     cfg.GetString(configfile.KeyEmbeddingModel),
		RateLimit: cfg.GetFloat(configfile.KeyEmbeddingRateLimit),
	})
}

// closeServices releases wired resources after command execution.
func closeServices() {
	if embeddingService != nil {
		embeddingService.Close() //nolint:errcheck
	}
	if vectorStore != nil {
		vectorStore.Close() //nolint:errcheck
	}
}
