package domain

// TokenSequence is the tokenizer output: a fixed-length sequence of token
// IDs with a matching attention mask. Both slices always have the model's
// configured maximum sequence length; positions beyond Length are padding.
type TokenSequence struct {
	// InputIDs are the token IDs, padded to the maximum sequence length.
	InputIDs []int32

	// AttentionMask is 1 for every real token position and 0 for padding.
	// Real positions form a prefix: the mask is monotonically non-increasing.
	AttentionMask []int32

	// Length is the count of real (non-padding) tokens, including the
	// start and end markers.
	Length int
}
