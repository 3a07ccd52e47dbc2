package driven

import (
	"context"

	"github.com/reef-labs/reefrag/internal/core/domain"
)

// VectorStore is the durable mapping from chunk identity to embedding and
// metadata, scoped per course.
//
// Search is a course-scoped full scan by contract; implementations may
// substitute an approximate index without changing callers.
//
// Concurrency: implementations must support concurrent readers while
// writes are in flight. Writes within one course must not interleave.
type VectorStore interface {
	// Initialize validates the persisted embedding-model version marker.
	// A differing version discards all stored records and rewrites the
	// marker; that is an expected migration, not an error. Only
	// unrecoverable storage failures are returned.
	Initialize(ctx context.Context, modelVersion int) error

	// Index inserts one record per chunk/embedding pair, scoped to the
	// course. Existing records for the chunks' documents are replaced.
	// Returns domain.ErrLengthMismatch when the slices differ in length.
	Index(ctx context.Context, chunks []domain.TextChunk, embeddings [][]float32, courseID string) error

	// Search returns the topK records of the course ranked by cosine
	// similarity to the query vector, descending, ties broken by stable
	// record order.
	Search(ctx context.Context, query []float32, courseID string, topK int) ([]domain.VectorSearchResult, error)

	// DeleteDocument removes all records of one document.
	DeleteDocument(ctx context.Context, documentID string) error

	// DeleteCourse removes all records of one course.
	DeleteCourse(ctx context.Context, courseID string) error

	// DeleteAll removes every record. The version marker is kept.
	DeleteAll(ctx context.Context) error

	// ChunkCount returns the number of records stored for a document.
	// Callers use this to test whether a document is indexed.
	ChunkCount(ctx context.Context, documentID string) (int, error)

	// Documents returns the distinct indexed documents of a course with
	// their text reassembled from chunks, for keyword-pass candidates.
	Documents(ctx context.Context, courseID string) ([]domain.CandidateDocument, error)

	// Close releases resources.
	Close() error
}
