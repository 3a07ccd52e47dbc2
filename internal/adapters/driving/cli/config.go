package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	configfile "github.com/reef-labs/reefrag/internal/adapters/driven/config/file"
)

// configKeyKinds maps every settable key to the type its value is parsed as.
var configKeyKinds = map[string]string{
	configfile.KeyDataDir:            "string",
	configfile.KeyEmbeddingBaseURL:   "string",
	configfile.KeyEmbeddingModel:     "string",
	configfile.KeyEmbeddingRateLimit: "float",
	configfile.KeySearchTopK:         "int",
	configfile.KeyContextMaxTokens:   "int",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage reefrag settings",
	Long: `View and change persisted settings: storage location, embedding
server, and retrieval defaults.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Changes a setting and persists it immediately.

Keys:
  storage.data_dir      - vector store directory
  embedding.base_url    - embedding server base URL (empty disables semantic features)
  embedding.model       - embedding model name
  embedding.rate_limit  - embedding requests per second
  search.top_k          - default chunk count for context retrieval
  context.max_tokens    - default context token budget`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := make([]string, 0, len(configKeyKinds))
	for key := range configKeyKinds {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	cmd.Println("Current Settings")
	cmd.Println("================")
	for _, key := range keys {
		val, ok := configStore.Get(key)
		if !ok {
			cmd.Printf("  %s = (not set)\n", key)
			continue
		}
		cmd.Printf("  %s = %v\n", key, val)
	}

	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	if _, known := configKeyKinds[key]; !known {
		return fmt.Errorf("unknown setting %q", key)
	}

	val, ok := configStore.Get(key)
	if !ok {
		cmd.Println("(not set)")
		return nil
	}
	cmd.Printf("%v\n", val)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	kind, known := configKeyKinds[key]
	if !known {
		return fmt.Errorf("unknown setting %q", key)
	}

	value, err := parseConfigValue(kind, raw)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("Set %s = %v\n", key, value)
	return nil
}

// parseConfigValue converts the raw argument to the key's declared type.
func parseConfigValue(kind, raw string) (any, error) {
	switch kind {
	case "int":
		val, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("want an integer, got %q", raw)
		}
		return int64(val), nil
	case "float":
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("want a number, got %q", raw)
		}
		return val, nil
	default:
		return raw, nil
	}
}
