package domain

// ContextSource describes one chunk that contributed to a RAGContext,
// for attribution in the generated answer.
type ContextSource struct {
	// DocumentID identifies the source document.
	DocumentID string

	// DocumentType tags the source document's kind.
	DocumentType DocumentType

	// Heading is the section heading the chunk fell under, if any.
	Heading string

	// Page is the 1-based page number, or 0 when unknown.
	Page int

	// Similarity is the chunk's cosine similarity to the query.
	Similarity float64
}

// RAGContext is the retrieval output consumed by prompt construction:
// a budget-limited concatenation of source-labelled chunk texts.
type RAGContext struct {
	// FormattedPrompt is the concatenated, source-labelled context
	// fragment. Consumed verbatim by the text-generation call.
	FormattedPrompt string

	// ChunkCount is the number of chunks included within the budget.
	ChunkCount int

	// Sources describes the included chunks, parallel to inclusion order.
	Sources []ContextSource
}

// HasContext returns true when retrieval produced any usable context.
func (c RAGContext) HasContext() bool {
	return c.ChunkCount > 0
}
