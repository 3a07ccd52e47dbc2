package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reef-labs/reefrag/internal/adapters/driven/storage/memory"
)

func TestDeleteCmd_Document(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	store := vectorStore.(*memory.Store)
	seedDocument(t, store, "doc-1", "course1", "Notes", "text")

	out, err := executeCommand("delete", "document", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted document doc-1")

	indexed, err := ragService.IsIndexed(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.False(t, indexed)
}

func TestDeleteCmd_Course(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	store := vectorStore.(*memory.Store)
	seedDocument(t, store, "doc-1", "course1", "Notes", "text")
	seedDocument(t, store, "doc-2", "course2", "Notes", "text")

	out, err := executeCommand("delete", "course", "course1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted course course1")

	indexed, err := ragService.IsIndexed(context.Background(), "doc-2")
	require.NoError(t, err)
	assert.True(t, indexed)
}

func TestDeleteCmd_All(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	store := vectorStore.(*memory.Store)
	seedDocument(t, store, "doc-1", "course1", "Notes", "text")

	out, err := executeCommand("delete", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted all indexed material")

	indexed, err := ragService.IsIndexed(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.False(t, indexed)
}

func TestVersionCmd(t *testing.T) {
	out, err := executeCommand("version")
	require.NoError(t, err)
	assert.Contains(t, out, "reefrag version")
}
