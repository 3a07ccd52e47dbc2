package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, semantic indexing and search
// are disabled and documents remain reachable by keyword search only.
//
// Implementations may include:
//   - The on-device MiniLM engine (tokenizer + numeric inference model)
//   - A server-delegated embedding API
type EmbeddingService interface {
	// Embed generates a unit-norm vector embedding for the given text.
	// Empty or whitespace-only text is rejected with domain.ErrEmptyInput.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. An individual
	// failure or empty input yields a zero vector for that item rather
	// than aborting the batch; callers rely on this to keep index-batch
	// operations from failing wholesale.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384).
	// This must match the VectorStore's configured dimensions.
	Dimensions() int

	// ModelVersion returns the embedding model version number. All
	// vectors stored together must share one version; the vector store
	// wipes itself when the version changes.
	ModelVersion() int

	// Close releases resources.
	Close() error
}
