package minilm

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// DefaultMaxLength is the model's maximum sequence length.
const DefaultMaxLength = 256

// continuation marks a WordPiece that does not start a word.
const continuation = "##"

// Tokenizer converts text into fixed-length WordPiece token sequences.
//
// The vocabulary is heavyweight and loaded lazily, exactly once, behind a
// sync.Once gate; all Tokenize calls afterwards are read-only and safe to
// run concurrently.
type Tokenizer struct {
	vocabPath string
	maxLen    int

	loadOnce sync.Once
	loadErr  error
	vocab    *Vocabulary
}

// TokenizerOption configures the tokenizer.
type TokenizerOption func(*Tokenizer)

// WithMaxLength sets the maximum sequence length.
func WithMaxLength(n int) TokenizerOption {
	return func(t *Tokenizer) {
		if n > 2 {
			t.maxLen = n
		}
	}
}

// WithVocabulary injects an already-parsed vocabulary, bypassing the
// file load. Used by tests and by callers that embed the vocabulary.
func WithVocabulary(v *Vocabulary) TokenizerOption {
	return func(t *Tokenizer) {
		t.vocab = v
	}
}

// NewTokenizer creates a tokenizer that loads its vocabulary from the
// given JSON file on first use.
func NewTokenizer(vocabPath string, opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{
		vocabPath: vocabPath,
		maxLen:    DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ensureLoaded performs the one-time vocabulary load.
func (t *Tokenizer) ensureLoaded() error {
	t.loadOnce.Do(func() {
		if t.vocab != nil {
			return
		}
		if t.vocabPath == "" {
			t.loadErr = domain.ErrVocabularyNotLoaded
			return
		}
		v, err := LoadVocabulary(t.vocabPath)
		if err != nil {
			t.loadErr = fmt.Errorf("%w: %v", domain.ErrVocabularyNotLoaded, err)
			return
		}
		t.vocab = v
	})
	return t.loadErr
}

// MaxLength returns the configured maximum sequence length.
func (t *Tokenizer) MaxLength() int {
	return t.maxLen
}

// VocabSize returns the number of loaded vocabulary entries, 0 before
// the vocabulary loads.
func (t *Tokenizer) VocabSize() int {
	if t.vocab == nil {
		return 0
	}
	return t.vocab.Size()
}

// Tokenize converts text into a fixed-length token sequence bracketed by
// the start and end markers, right-padded, with a matching attention mask.
func (t *Tokenizer) Tokenize(text string) (domain.TokenSequence, error) {
	if err := t.ensureLoaded(); err != nil {
		return domain.TokenSequence{}, err
	}

	v := t.vocab
	ids := make([]int32, 0, t.maxLen)
	ids = append(ids, v.clsID)

	// Leave room for the end marker: stop consuming words once the
	// accumulated length would exceed maxLen-1.
	for _, word := range splitWords(normalize(text)) {
		pieces := t.wordpiece(word)
		if len(ids)+len(pieces) > t.maxLen-1 {
			break
		}
		ids = append(ids, pieces...)
	}

	if len(ids) > t.maxLen-1 {
		ids = ids[:t.maxLen-1]
	}
	ids = append(ids, v.sepID)

	length := len(ids)
	inputIDs := make([]int32, t.maxLen)
	mask := make([]int32, t.maxLen)
	copy(inputIDs, ids)
	for i := length; i < t.maxLen; i++ {
		inputIDs[i] = v.padID
	}
	for i := 0; i < length; i++ {
		mask[i] = 1
	}

	return domain.TokenSequence{
		InputIDs:      inputIDs,
		AttentionMask: mask,
		Length:        length,
	}, nil
}

// wordpiece applies greedy longest-prefix matching to one word. A piece
// that does not start the word carries the ## continuation marker. When
// no prefix of the remainder matches at all, the unknown ID is emitted
// and scanning advances by one character.
func (t *Tokenizer) wordpiece(word string) []int32 {
	runes := []rune(word)
	pieces := make([]int32, 0, 4)

	start := 0
	for start < len(runes) {
		end := len(runes)
		matched := false

		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = continuation + piece
			}
			if id, ok := t.vocab.Lookup(piece); ok {
				pieces = append(pieces, id)
				start = end
				matched = true
				break
			}
			end--
		}

		if !matched {
			pieces = append(pieces, t.vocab.unkID)
			start++
		}
	}

	return pieces
}

// normalize lower-cases the text, strips diacritics, and folds runs of
// whitespace into single spaces.
func normalize(text string) string {
	lowered := strings.ToLower(text)

	// NFD decomposition, then drop combining marks.
	decomposed := norm.NFD.String(lowered)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// splitWords splits normalized text on whitespace and punctuation; every
// punctuation character becomes its own word.
func splitWords(text string) []string {
	var (
		words   []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case isPunctuation(r):
			flush()
			words = append(words, string(r))
		default:
			current = append(current, r)
		}
	}
	flush()

	return words
}

// isPunctuation covers ASCII punctuation and the CJK punctuation and
// full-width form ranges, matching the exported tokenizer's behaviour.
func isPunctuation(r rune) bool {
	if r >= 0x3000 && r <= 0x303F {
		return true
	}
	if r >= 0xFF00 && r <= 0xFFEF {
		return true
	}
	return unicode.IsPunct(r)
}
