package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/reef-labs/reefrag/internal/adapters/driven/storage/memory"
	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/services"
	"github.com/reef-labs/reefrag/internal/postprocessors/chunker"
)

// stubEmbeddingService returns a fixed vector for every input.
type stubEmbeddingService struct {
	embedding []float32
}

func (m *stubEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	return m.embedding, nil
}

func (m *stubEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *stubEmbeddingService) Dimensions() int { return len(m.embedding) }
func (m *stubEmbeddingService) ModelVersion() int { return 1 }
func (m *stubEmbeddingService) Close() error { return nil }

// setupTestServices wires in-memory services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldStore := vectorStore
	oldEmbedding := embeddingService
	oldRAG := ragService
	oldSearch := searchService
	oldInitialized := servicesInitialized
	servicesInitialized = true

	store := memory.NewStore()
	embedder := &stubEmbeddingService{embedding: []float32{1, 0, 0}}

	vectorStore = store
	embeddingService = embedder
	ragService = services.NewRAGService(chunker.New(), embedder, store)
	searchService = services.NewHybridSearchService(store, embedder)

	return func() {
		vectorStore = oldStore
		embeddingService = oldEmbedding
		ragService = oldRAG
		searchService = oldSearch
		servicesInitialized = oldInitialized
	}
}

// seedDocument indexes one document with a single perfect-match chunk.
func seedDocument(t *testing.T, store *memory.Store, documentID, courseID, name, text string) {
	t.Helper()
	chunks := []domain.TextChunk{{
		ID:           domain.ChunkID(documentID, 0),
		DocumentID:   documentID,
		DocumentType: domain.DocumentTypeNote,
		Text:         text,
		Position:     0,
		Heading:      name,
	}}
	if err := store.Index(context.Background(), chunks, [][]float32{{1, 0, 0}}, courseID); err != nil {
		t.Fatal(err)
	}
}

// executeCommand runs the root command with args and captures output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
