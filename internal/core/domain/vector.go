package domain

import "math"

// EmbeddingDimensions is the vector size of the on-device embedding model.
const EmbeddingDimensions = 384

// VectorRecord is the persisted unit of the vector store: one chunk's
// embedding together with the metadata needed for retrieval and attribution.
// Records are never mutated in place; re-indexing replaces by document ID.
type VectorRecord struct {
	// ChunkID is the stable chunk identifier.
	ChunkID string

	// DocumentID links to the owning document.
	DocumentID string

	// CourseID scopes the record to a course. All store operations are
	// restricted to one course partition.
	CourseID string

	// DocumentType tags the owning document's kind.
	DocumentType DocumentType

	// Embedding is the L2-normalised chunk vector.
	Embedding []float32

	// Text is the chunk content, kept for prompt assembly.
	Text string

	// Heading is the section heading context, if any.
	Heading string

	// Page is the 1-based page number, or 0 when unknown.
	Page int

	// Position is the chunk's order within its document.
	Position int
}

// VectorSearchResult is a single similarity hit from the vector store.
type VectorSearchResult struct {
	// Record is the matched record.
	Record VectorRecord

	// Similarity is the cosine similarity to the query vector.
	Similarity float64
}

// CosineSimilarity returns the cosine of the angle between two vectors:
// their dot product divided by the product of their norms. Returns 0 when
// either vector is zero-length or zero-norm, or when dimensions differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// L2Normalize scales a vector to unit Euclidean norm. A zero-norm vector
// is returned unchanged rather than dividing by zero.
func L2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}

	result := make([]float32, len(vec))
	for i, v := range vec {
		result[i] = float32(float64(v) / norm)
	}

	return result
}
