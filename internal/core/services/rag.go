package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/ports/driven"
	"github.com/reef-labs/reefrag/internal/core/ports/driving"
	"github.com/reef-labs/reefrag/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

const (
	// defaultTopK is how many chunks are fetched before budget assembly.
	defaultTopK = 5

	// defaultMaxTokens is the approximate token budget for the assembled
	// context.
	defaultMaxTokens = 2000

	// charsPerToken approximates the character cost of one token.
	charsPerToken = 4

	// contextSimilarityFloor drops chunks too weakly related to the query.
	// Lower than the document-ranking floor: a chunk that would be noise
	// in a ranking can still be useful background in a prompt.
	contextSimilarityFloor = 0.15

	// minIndexableLength matches the chunker's minimum chunk size. Shorter
	// documents stay reachable through keyword search only.
	minIndexableLength = domain.MinChunkSize
)

// Chunker splits document text into indexable chunks.
type Chunker interface {
	Chunk(text, documentID string, documentType domain.DocumentType) []domain.TextChunk
}

// RAGService orchestrates the chunk, embed, store pipeline and assembles
// budget-limited prompt context for queries.
type RAGService struct {
	chunker          Chunker
	embeddingService driven.EmbeddingService
	vectorStore      driven.VectorStore
}

// NewRAGService creates a new RAG service. The embeddingService parameter
// is optional (can be nil); indexing is then a no-op and retrieval always
// returns an empty context.
func NewRAGService(
	chunker Chunker,
	embeddingService driven.EmbeddingService,
	vectorStore driven.VectorStore,
) *RAGService {
	return &RAGService{
		chunker:          chunker,
		embeddingService: embeddingService,
		vectorStore:      vectorStore,
	}
}

// IndexDocument chunks, embeds, and stores a document's text. Existing
// records of the document are replaced.
func (s *RAGService) IndexDocument(
	ctx context.Context, documentID string, documentType domain.DocumentType, courseID, text string,
) error {
	logger.Section("Document Indexing")
	logger.Debug("Document: %s (%s), course: %s, %d chars", documentID, documentType, courseID, len(text))

	if s.embeddingService == nil {
		logger.Debug("No embedding service, skipping indexing")
		return nil
	}

	text = strings.TrimSpace(text)
	if len(text) < minIndexableLength {
		logger.Debug("Text below indexable minimum (%d chars), skipping", minIndexableLength)
		return nil
	}

	chunks := s.chunker.Chunk(text, documentID, documentType)
	if len(chunks) == 0 {
		logger.Debug("Chunker produced no chunks, skipping")
		return nil
	}
	logger.Debug("Chunked into %d pieces", len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := s.embeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding document %s: %w", documentID, err)
	}

	if err := s.vectorStore.Index(ctx, chunks, embeddings, courseID); err != nil {
		return fmt.Errorf("indexing document %s: %w", documentID, err)
	}

	logger.Info("Indexed document %s: %d chunks", documentID, len(chunks))
	return nil
}

// GetContext retrieves a budget-limited prompt fragment for a query.
// Retrieval failures degrade to an empty context so callers can always
// fall back to answering without course material.
func (s *RAGService) GetContext(
	ctx context.Context, query, courseID string, opts driving.ContextOptions,
) (domain.RAGContext, error) {
	logger.Section("Context Retrieval")

	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	logger.Debug("Query: %q, course: %s, topK: %d, maxTokens: %d", query, courseID, opts.TopK, opts.MaxTokens)

	if s.embeddingService == nil || strings.TrimSpace(query) == "" {
		return domain.RAGContext{}, nil
	}

	embedding, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return domain.RAGContext{}, nil
	}

	results, err := s.vectorStore.Search(ctx, embedding, courseID, opts.TopK)
	if err != nil {
		logger.Warn("Vector search failed: %v", err)
		return domain.RAGContext{}, nil
	}

	budget := opts.MaxTokens * charsPerToken
	return assembleContext(results, budget), nil
}

// assembleContext formats search results into a prompt fragment, dropping
// weak hits and stopping before the character budget is exceeded.
func assembleContext(results []domain.VectorSearchResult, budget int) domain.RAGContext {
	var b strings.Builder
	var sources []domain.ContextSource
	used := 0
	count := 0

	for _, result := range results {
		if result.Similarity < contextSimilarityFloor {
			continue
		}
		if used+len(result.Record.Text) > budget {
			break
		}

		count++
		used += len(result.Record.Text)

		fmt.Fprintf(&b, "[Source %d: %s]\n%s\n\n", count, sourceLabel(result.Record), result.Record.Text)
		sources = append(sources, domain.ContextSource{
			DocumentID:   result.Record.DocumentID,
			DocumentType: result.Record.DocumentType,
			Heading:      result.Record.Heading,
			Page:         result.Record.Page,
			Similarity:   result.Similarity,
		})
	}

	if count == 0 {
		logger.Debug("No chunks above similarity floor within budget")
		return domain.RAGContext{}
	}

	logger.Info("Assembled context: %d chunks, %d chars", count, used)
	return domain.RAGContext{
		FormattedPrompt: "Relevant course material:\n\n" + strings.TrimRight(b.String(), "\n") + "\n",
		ChunkCount:      count,
		Sources:         sources,
	}
}

// sourceLabel builds the provenance line for one chunk.
func sourceLabel(record domain.VectorRecord) string {
	label := record.DocumentType.Description()
	if record.Heading != "" {
		label += ", " + record.Heading
	}
	if record.Page > 0 {
		label += fmt.Sprintf(", page %d", record.Page)
	}
	return label
}

// IsIndexed reports whether a document has stored chunks.
func (s *RAGService) IsIndexed(ctx context.Context, documentID string) (bool, error) {
	count, err := s.vectorStore.ChunkCount(ctx, documentID)
	if err != nil {
		return false, fmt.Errorf("counting chunks for %s: %w", documentID, err)
	}
	return count > 0, nil
}

// DeleteDocument removes a document's records from the store.
func (s *RAGService) DeleteDocument(ctx context.Context, documentID string) error {
	logger.Debug("Deleting document %s from vector store", documentID)
	return s.vectorStore.DeleteDocument(ctx, documentID)
}

// DeleteCourse removes a course's records from the store.
func (s *RAGService) DeleteCourse(ctx context.Context, courseID string) error {
	logger.Debug("Deleting course %s from vector store", courseID)
	return s.vectorStore.DeleteCourse(ctx, courseID)
}
