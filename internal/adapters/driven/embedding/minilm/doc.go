// Package minilm provides the on-device embedding engine: a WordPiece
// tokenizer over an exported MiniLM vocabulary, and mean-pooled,
// L2-normalised sentence embeddings computed from an opaque numeric
// inference model's per-token hidden states.
//
// The numeric model itself is injected behind the driven.InferenceModel
// port, so tests substitute a double and the engine stays free of any
// accelerator-specific code.
package minilm
