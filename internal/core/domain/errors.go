package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyInput indicates empty or whitespace-only text was passed to
	// a single-item embed. Batch embedding downgrades this to a zero vector.
	ErrEmptyInput = errors.New("empty input text")

	// ErrVocabularyNotLoaded indicates tokenization was attempted before
	// the vocabulary was loaded. Callers must handle this explicitly; the
	// tokenizer never silently returns empty output.
	ErrVocabularyNotLoaded = errors.New("vocabulary not loaded")

	// ErrEmbeddingUnavailable indicates the embedding engine is not
	// configured or failed setup. Semantic indexing and search are disabled.
	ErrEmbeddingUnavailable = errors.New("embedding engine unavailable")

	// ErrAmbiguousShape indicates the inference output tensor's sequence
	// and hidden axes could not be unambiguously identified from its
	// declared shape. Pooling fails rather than guessing.
	ErrAmbiguousShape = errors.New("ambiguous tensor shape")

	// ErrDimensionMismatch indicates a vector's length does not match the
	// configured embedding dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrLengthMismatch indicates the chunks and embeddings passed to an
	// index operation have different lengths.
	ErrLengthMismatch = errors.New("chunks and embeddings length mismatch")

	// ErrRateLimited indicates an upstream service rejected a request for
	// rate limiting. Retried with backoff before surfacing.
	ErrRateLimited = errors.New("rate limited")
)
