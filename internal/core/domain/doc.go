// Package domain defines the core business entities for the reefrag engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TextChunk: A bounded span of a document's text, the unit of indexing
//   - TokenSequence: A fixed-length token ID sequence with attention mask
//   - VectorRecord: A persisted chunk embedding with metadata
//   - HybridSearchResult: A fused keyword + semantic ranking artifact
//   - RAGContext: An assembled, budget-limited prompt fragment with sources
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
