package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reef-labs/reefrag/internal/adapters/driven/storage/memory"
	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/ports/driving"
	"github.com/reef-labs/reefrag/internal/postprocessors/chunker"
)

func newTestRAGService(store *memory.Store, embedder *mockEmbeddingService) *RAGService {
	var svc *RAGService
	if embedder == nil {
		svc = NewRAGService(chunker.New(), nil, store)
	} else {
		svc = NewRAGService(chunker.New(), embedder, store)
	}
	return svc
}

// storeChunks indexes n chunks of the given text directly, bypassing the
// chunker, with every embedding equal to vec.
func storeChunks(t *testing.T, store *memory.Store, documentID, courseID, text string, n int, vec []float32) {
	t.Helper()
	chunks := make([]domain.TextChunk, n)
	embeddings := make([][]float32, n)
	for i := range chunks {
		chunks[i] = domain.TextChunk{
			ID:           domain.ChunkID(documentID, i),
			DocumentID:   documentID,
			DocumentType: domain.DocumentTypeNote,
			Text:         text,
			Position:     i,
			Heading:      "Chapter 1: Heat",
			Page:         i + 1,
		}
		embeddings[i] = vec
	}
	require.NoError(t, store.Index(context.Background(), chunks, embeddings, courseID))
}

func TestRAGService_IndexDocumentBelowMinimumIsNoOp(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRAGService(store, &mockEmbeddingService{embedding: []float32{1, 0}})

	err := svc.IndexDocument(context.Background(), "doc1", domain.DocumentTypeNote, "c1", "too short")
	require.NoError(t, err)

	indexed, err := svc.IsIndexed(context.Background(), "doc1")
	require.NoError(t, err)
	assert.False(t, indexed)
}

func TestRAGService_IndexDocumentWithoutEmbedderIsNoOp(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRAGService(store, nil)

	text := strings.Repeat("Heat flows from hot bodies to cold bodies. ", 30)
	err := svc.IndexDocument(context.Background(), "doc1", domain.DocumentTypeNote, "c1", text)
	require.NoError(t, err)

	indexed, err := svc.IsIndexed(context.Background(), "doc1")
	require.NoError(t, err)
	assert.False(t, indexed)
}

func TestRAGService_IndexDocumentStoresChunks(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRAGService(store, &mockEmbeddingService{embedding: []float32{1, 0}})

	text := strings.Repeat("Heat flows from hot bodies to cold bodies. ", 60)
	err := svc.IndexDocument(context.Background(), "doc1", domain.DocumentTypeNote, "c1", text)
	require.NoError(t, err)

	indexed, err := svc.IsIndexed(context.Background(), "doc1")
	require.NoError(t, err)
	assert.True(t, indexed)

	count, err := store.ChunkCount(context.Background(), "doc1")
	require.NoError(t, err)
	assert.Greater(t, count, 1)
}

func TestRAGService_IndexDocumentReplacesPriorIndex(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRAGService(store, &mockEmbeddingService{embedding: []float32{1, 0}})

	long := strings.Repeat("Heat flows from hot bodies to cold bodies. ", 60)
	require.NoError(t, svc.IndexDocument(context.Background(), "doc1", domain.DocumentTypeNote, "c1", long))
	before, err := store.ChunkCount(context.Background(), "doc1")
	require.NoError(t, err)

	short := strings.Repeat("Entropy never decreases in a closed system. ", 10)
	require.NoError(t, svc.IndexDocument(context.Background(), "doc1", domain.DocumentTypeNote, "c1", short))
	after, err := store.ChunkCount(context.Background(), "doc1")
	require.NoError(t, err)

	assert.Less(t, after, before)
}

func TestRAGService_GetContextRespectsBudget(t *testing.T) {
	store := memory.NewStore()
	// Five 600-char chunks, all perfect matches
	text := strings.Repeat("x", 600)
	storeChunks(t, store, "doc1", "c1", text, 5, []float32{1, 0})

	svc := newTestRAGService(store, &mockEmbeddingService{embedding: []float32{1, 0}})

	// 200 tokens * 4 chars = 800 char budget: only one chunk fits
	ragCtx, err := svc.GetContext(context.Background(), "heat", "c1", driving.ContextOptions{MaxTokens: 200})
	require.NoError(t, err)
	assert.True(t, ragCtx.HasContext())
	assert.Equal(t, 1, ragCtx.ChunkCount)
	require.Len(t, ragCtx.Sources, 1)
}

func TestRAGService_GetContextDefaultTopK(t *testing.T) {
	store := memory.NewStore()
	text := strings.Repeat("y", 100)
	storeChunks(t, store, "doc1", "c1", text, 8, []float32{1, 0})

	svc := newTestRAGService(store, &mockEmbeddingService{embedding: []float32{1, 0}})

	ragCtx, err := svc.GetContext(context.Background(), "heat", "c1", driving.ContextOptions{})
	require.NoError(t, err)
	// Default fetch is 5 chunks and all fit the default budget
	assert.Equal(t, 5, ragCtx.ChunkCount)
}

func TestRAGService_GetContextFormatsSources(t *testing.T) {
	store := memory.NewStore()
	storeChunks(t, store, "doc1", "c1", "Heat flows downhill.", 1, []float32{1, 0})

	svc := newTestRAGService(store, &mockEmbeddingService{embedding: []float32{1, 0}})

	ragCtx, err := svc.GetContext(context.Background(), "heat", "c1", driving.ContextOptions{})
	require.NoError(t, err)
	require.True(t, ragCtx.HasContext())

	assert.Contains(t, ragCtx.FormattedPrompt, "Relevant course material:")
	assert.Contains(t, ragCtx.FormattedPrompt, "[Source 1: Notes, Chapter 1: Heat, page 1]")
	assert.Contains(t, ragCtx.FormattedPrompt, "Heat flows downhill.")

	require.Len(t, ragCtx.Sources, 1)
	assert.Equal(t, "doc1", ragCtx.Sources[0].DocumentID)
	assert.Equal(t, domain.DocumentTypeNote, ragCtx.Sources[0].DocumentType)
	assert.Equal(t, "Chapter 1: Heat", ragCtx.Sources[0].Heading)
	assert.Equal(t, 1, ragCtx.Sources[0].Page)
	assert.InDelta(t, 1.0, ragCtx.Sources[0].Similarity, 1e-6)
}

func TestRAGService_GetContextFiltersWeakChunks(t *testing.T) {
	store := memory.NewStore()
	// Orthogonal to the query vector, similarity 0
	storeChunks(t, store, "doc1", "c1", "unrelated", 1, []float32{0, 1})

	svc := newTestRAGService(store, &mockEmbeddingService{embedding: []float32{1, 0}})

	ragCtx, err := svc.GetContext(context.Background(), "heat", "c1", driving.ContextOptions{})
	require.NoError(t, err)
	assert.False(t, ragCtx.HasContext())
	assert.Empty(t, ragCtx.FormattedPrompt)
}

func TestRAGService_GetContextDegradesOnEmbedFailure(t *testing.T) {
	store := memory.NewStore()
	storeChunks(t, store, "doc1", "c1", "text", 1, []float32{1, 0})

	svc := newTestRAGService(store, &mockEmbeddingService{embedErr: errors.New("model offline")})

	ragCtx, err := svc.GetContext(context.Background(), "heat", "c1", driving.ContextOptions{})
	require.NoError(t, err)
	assert.False(t, ragCtx.HasContext())
}

func TestRAGService_GetContextEmptyQueryOrNoEmbedder(t *testing.T) {
	store := memory.NewStore()
	storeChunks(t, store, "doc1", "c1", "text", 1, []float32{1, 0})

	svc := newTestRAGService(store, &mockEmbeddingService{embedding: []float32{1, 0}})
	ragCtx, err := svc.GetContext(context.Background(), "  ", "c1", driving.ContextOptions{})
	require.NoError(t, err)
	assert.False(t, ragCtx.HasContext())

	svc = newTestRAGService(store, nil)
	ragCtx, err = svc.GetContext(context.Background(), "heat", "c1", driving.ContextOptions{})
	require.NoError(t, err)
	assert.False(t, ragCtx.HasContext())
}

func TestRAGService_Deletes(t *testing.T) {
	store := memory.NewStore()
	storeChunks(t, store, "doc1", "c1", "text", 2, []float32{1, 0})
	storeChunks(t, store, "doc2", "c2", "text", 2, []float32{1, 0})

	svc := newTestRAGService(store, &mockEmbeddingService{embedding: []float32{1, 0}})

	require.NoError(t, svc.DeleteDocument(context.Background(), "doc1"))
	indexed, err := svc.IsIndexed(context.Background(), "doc1")
	require.NoError(t, err)
	assert.False(t, indexed)

	require.NoError(t, svc.DeleteCourse(context.Background(), "c2"))
	indexed, err = svc.IsIndexed(context.Background(), "doc2")
	require.NoError(t, err)
	assert.False(t, indexed)
}
