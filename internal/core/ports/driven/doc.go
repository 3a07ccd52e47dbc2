// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Tokenizer: Converts text into fixed-length token sequences
//   - VectorStore: Persists and searches chunk embeddings per course
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, documents
//     stay unindexed and remain reachable by keyword search only.
//   - InferenceModel: The opaque numeric model behind the on-device
//     embedding engine. Only the engine adapter touches it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
