package domain

// CandidateDocument is a document eligible for hybrid search ranking.
// The caller supplies the candidate set; name and text feed the keyword pass.
type CandidateDocument struct {
	// ID is the document identifier.
	ID string

	// Name is the human-readable document name.
	Name string

	// Text is the indexable document text.
	Text string
}

// HybridSearchResult is an ephemeral ranking artifact for one document.
// It records where the document placed in each list and the fused score.
// Results are never persisted.
type HybridSearchResult struct {
	// DocumentID identifies the ranked document.
	DocumentID string

	// KeywordRank is the 1-based dense rank in the keyword list,
	// 0 when the document did not appear there.
	KeywordRank int

	// SemanticRank is the 1-based dense rank in the semantic list,
	// 0 when the document did not appear there.
	SemanticRank int

	// Similarity is the document's best chunk similarity from the
	// semantic pass, 0 when absent from that list.
	Similarity float64

	// Score is the combined Reciprocal Rank Fusion score.
	Score float64
}

// InBothLists returns true when the document appeared in the keyword and
// the semantic ranking.
func (r HybridSearchResult) InBothLists() bool {
	return r.KeywordRank > 0 && r.SemanticRank > 0
}
