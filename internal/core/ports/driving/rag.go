package driving

import (
	"context"

	"github.com/reef-labs/reefrag/internal/core/domain"
)

// ContextOptions configures a retrieval request.
type ContextOptions struct {
	// TopK is the number of chunks fetched from the vector store
	// before budget assembly (default 5).
	TopK int

	// MaxTokens is the approximate token budget for the assembled
	// context (default 2000). The character budget is MaxTokens times
	// an approximate chars-per-token constant.
	MaxTokens int
}

// RAGService indexes documents and retrieves context for queries.
type RAGService interface {
	// IndexDocument chunks, embeds, and stores a document's text.
	// A no-op when the text is below the chunker's minimum or the
	// embedding engine is unavailable; the document then remains
	// reachable by keyword search only.
	IndexDocument(ctx context.Context, documentID string, documentType domain.DocumentType, courseID, text string) error

	// GetContext retrieves a budget-limited prompt fragment for a query.
	// Retrieval failures yield an empty RAGContext, never an error the
	// caller must branch on for display.
	GetContext(ctx context.Context, query, courseID string, opts ContextOptions) (domain.RAGContext, error)

	// IsIndexed reports whether a document has stored chunks.
	IsIndexed(ctx context.Context, documentID string) (bool, error)

	// DeleteDocument removes a document's records from the store.
	DeleteDocument(ctx context.Context, documentID string) error

	// DeleteCourse removes a course's records from the store.
	DeleteCourse(ctx context.Context, courseID string) error
}

// HybridSearchService ranks whole documents for a query by fusing keyword
// and semantic rankings.
type HybridSearchService interface {
	// Search returns candidate document IDs ranked by Reciprocal Rank
	// Fusion of the keyword and semantic passes. Candidates matched by
	// neither pass follow the fused ranking in input order, so the
	// result covers the full candidate list. A blank query or empty
	// candidate list yields an empty result.
	Search(ctx context.Context, query string, candidates []domain.CandidateDocument, courseID string) ([]string, error)
}
