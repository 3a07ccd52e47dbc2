package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/reef-labs/reefrag/internal/adapters/driven/config/file"
	"github.com/reef-labs/reefrag/internal/adapters/driven/storage/memory"
	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/ports/driving"
)

// recordingRAG captures the options the context command passes through.
type recordingRAG struct {
	opts driving.ContextOptions
}

func (r *recordingRAG) IndexDocument(_ context.Context, _ string, _ domain.DocumentType, _, _ string) error {
	return nil
}

func (r *recordingRAG) GetContext(_ context.Context, _, _ string, opts driving.ContextOptions) (domain.RAGContext, error) {
	r.opts = opts
	return domain.RAGContext{}, nil
}

func (r *recordingRAG) IsIndexed(_ context.Context, _ string) (bool, error) { return false, nil }
func (r *recordingRAG) DeleteDocument(_ context.Context, _ string) error { return nil }
func (r *recordingRAG) DeleteCourse(_ context.Context, _ string) error { return nil }

func TestContextCmd_Use(t *testing.T) {
	assert.Equal(t, "context [course-id] [query]", contextCmd.Use)
}

func TestContextCmd_HasFlags(t *testing.T) {
	flag := contextCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)

	require.NotNil(t, contextCmd.Flags().Lookup("max-tokens"))
	require.NotNil(t, contextCmd.Flags().Lookup("json"))
}

func TestContextCmd_ReturnsIndexedMaterial(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	store := vectorStore.(*memory.Store)
	seedDocument(t, store, "doc-1", "course1", "Thermodynamics", "Heat flows from hot to cold.")

	out, err := executeCommand("context", "course1", "how does heat move")
	require.NoError(t, err)
	assert.Contains(t, out, "Relevant course material:")
	assert.Contains(t, out, "Heat flows from hot to cold.")
	assert.Contains(t, out, "doc-1")
}

func TestContextCmd_NoMaterialFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("context", "empty-course", "anything")
	require.NoError(t, err)
	assert.Contains(t, out, "No relevant material found.")
}

func TestContextCmd_FlagsFallBackToSettings(t *testing.T) {
	setupTestConfig(t)
	require.NoError(t, configStore.Set(configfile.KeySearchTopK, int64(7)))
	require.NoError(t, configStore.Set(configfile.KeyContextMaxTokens, int64(300)))

	rag := &recordingRAG{}
	oldRAG := ragService
	ragService = rag
	defer func() { ragService = oldRAG }()

	_, err := executeCommand("context", "course1", "heat")
	require.NoError(t, err)
	assert.Equal(t, 7, rag.opts.TopK)
	assert.Equal(t, 300, rag.opts.MaxTokens)

	// Explicit flags win over the persisted settings.
	defer func() { contextTopK, contextMaxTokens = 0, 0 }()
	_, err = executeCommand("context", "--top-k", "2", "--max-tokens", "100", "course1", "heat")
	require.NoError(t, err)
	assert.Equal(t, 2, rag.opts.TopK)
	assert.Equal(t, 100, rag.opts.MaxTokens)
}

func TestContextCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { contextJSON = false }()

	store := vectorStore.(*memory.Store)
	seedDocument(t, store, "doc-1", "course1", "Thermodynamics", "Heat flows downhill.")

	out, err := executeCommand("context", "--json", "course1", "heat")
	require.NoError(t, err)
	assert.Contains(t, out, `"FormattedPrompt"`)
	assert.Contains(t, out, `"doc-1"`)
}
