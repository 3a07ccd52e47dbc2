package driven

import (
	"github.com/reef-labs/reefrag/internal/core/domain"
)

// Tokenizer converts text into fixed-length token sequences for the
// embedding model. Implementations own a lazily-loaded vocabulary that is
// initialised at most once and safe for concurrent read-only use afterwards.
type Tokenizer interface {
	// Tokenize converts text into a fixed-length token sequence.
	// Returns domain.ErrVocabularyNotLoaded when called before the
	// vocabulary has been loaded.
	Tokenize(text string) (domain.TokenSequence, error)

	// MaxLength returns the configured maximum sequence length.
	MaxLength() int

	// VocabSize returns the number of entries in the loaded vocabulary,
	// 0 before loading.
	VocabSize() int
}
