package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reef-labs/reefrag/internal/adapters/driven/storage/memory"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [course-id] [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresTwoArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("search", "course1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSearchCmd_RanksSeededDocuments(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	store := vectorStore.(*memory.Store)
	seedDocument(t, store, "doc-1", "course1", "Thermodynamics notes", "heat and entropy")
	seedDocument(t, store, "doc-2", "course1", "Biology notes", "cells and membranes")

	out, err := executeCommand("search", "course1", "thermodynamics")
	require.NoError(t, err)
	assert.Contains(t, out, "Results:")

	// The keyword match leads; the unmatched document still lists after it.
	matchIdx := strings.Index(out, "Thermodynamics notes")
	otherIdx := strings.Index(out, "Biology notes")
	require.GreaterOrEqual(t, matchIdx, 0)
	require.GreaterOrEqual(t, otherIdx, 0)
	assert.Less(t, matchIdx, otherIdx)
}

func TestSearchCmd_NoResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("search", "empty-course", "anything")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchJSON = false }()

	store := vectorStore.(*memory.Store)
	seedDocument(t, store, "doc-1", "course1", "Thermodynamics notes", "heat and entropy")

	out, err := executeCommand("search", "--json", "course1", "thermodynamics")
	require.NoError(t, err)
	assert.Contains(t, out, `"doc-1"`)
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	oldSearch, oldStore, oldRAG := searchService, vectorStore, ragService
	oldInitialized := servicesInitialized
	searchService = nil
	vectorStore = nil
	ragService = nil
	servicesInitialized = true
	defer func() {
		searchService, vectorStore, ragService = oldSearch, oldStore, oldRAG
		servicesInitialized = oldInitialized
	}()

	_, err := executeCommand("search", "course1", "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
