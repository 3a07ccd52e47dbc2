package minilm

import (
	"encoding/json"
	"fmt"
	"os"
)

// Default special token IDs for the exported MiniLM vocabulary.
const (
	DefaultPadID = 0
	DefaultUnkID = 100
	DefaultClsID = 101
	DefaultSepID = 102
)

// Vocabulary is the loaded WordPiece token table with its special IDs.
type Vocabulary struct {
	ids map[string]int32

	padID int32
	unkID int32
	clsID int32
	sepID int32
}

// vocabFile is the on-disk JSON layout exported alongside the model:
// a vocab mapping plus an optional special_tokens override block.
type vocabFile struct {
	Vocab         map[string]int32 `json:"vocab"`
	SpecialTokens *specialTokens   `json:"special_tokens"`
}

type specialTokens struct {
	PadTokenID *int32 `json:"pad_token_id"`
	UnkTokenID *int32 `json:"unk_token_id"`
	ClsTokenID *int32 `json:"cls_token_id"`
	SepTokenID *int32 `json:"sep_token_id"`
}

// LoadVocabulary reads a vocabulary JSON file. A missing or malformed
// file is a fatal setup error for the tokenizer.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary parses vocabulary JSON bytes.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var file vocabFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing vocabulary: %w", err)
	}
	if len(file.Vocab) == 0 {
		return nil, fmt.Errorf("parsing vocabulary: empty vocab mapping")
	}

	v := &Vocabulary{
		ids:   file.Vocab,
		padID: DefaultPadID,
		unkID: DefaultUnkID,
		clsID: DefaultClsID,
		sepID: DefaultSepID,
	}

	if st := file.SpecialTokens; st != nil {
		if st.PadTokenID != nil {
			v.padID = *st.PadTokenID
		}
		if st.UnkTokenID != nil {
			v.unkID = *st.UnkTokenID
		}
		if st.ClsTokenID != nil {
			v.clsID = *st.ClsTokenID
		}
		if st.SepTokenID != nil {
			v.sepID = *st.SepTokenID
		}
	}

	return v, nil
}

// Lookup returns the token ID for a vocabulary entry.
func (v *Vocabulary) Lookup(piece string) (int32, bool) {
	id, ok := v.ids[piece]
	return id, ok
}

// Size returns the number of vocabulary entries.
func (v *Vocabulary) Size() int {
	return len(v.ids)
}
