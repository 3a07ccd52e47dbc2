package mcp

import (
	"github.com/reef-labs/reefrag/internal/core/ports/driven"
	"github.com/reef-labs/reefrag/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// RAG retrieves budget-limited context for queries.
	RAG driving.RAGService

	// Search ranks course documents for a query.
	Search driving.HybridSearchService

	// Store provides the candidate documents for ranking.
	Store driven.VectorStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	// Search and Store are optional; the rank tool reports unavailable
	return nil
}
