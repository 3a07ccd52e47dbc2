package services

import (
	"context"
	"sort"
	"strings"

	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/ports/driven"
	"github.com/reef-labs/reefrag/internal/core/ports/driving"
	"github.com/reef-labs/reefrag/internal/logger"
)

// Ensure HybridSearchService implements the interface.
var _ driving.HybridSearchService = (*HybridSearchService)(nil)

// Keyword pass scoring weights. A phrase hit in the document name counts
// double a phrase hit in the body; individual terms score a tenth of that.
const (
	phraseNameScore = 100
	phraseTextScore = 50
	termNameScore   = 10
	termTextScore   = 5
)

const (
	// rrfK dampens the contribution of top ranks during fusion.
	rrfK = 60

	// semanticFanOut is how many chunks the semantic pass fetches before
	// collapsing to per-document best hits.
	semanticFanOut = 20

	// hybridSimilarityFloor drops weak semantic hits from document ranking.
	hybridSimilarityFloor = 0.25
)

// rankedDoc holds one document's standing in a single pass.
type rankedDoc struct {
	documentID string
	score      float64
}

// HybridSearchService ranks candidate documents for a query by fusing a
// keyword pass over names and text with a semantic pass over the vector
// store.
type HybridSearchService struct {
	vectorStore      driven.VectorStore
	embeddingService driven.EmbeddingService
}

// NewHybridSearchService creates a new hybrid search service.
// The embeddingService parameter is optional (can be nil); without it the
// ranking is keyword-only.
func NewHybridSearchService(
	vectorStore driven.VectorStore,
	embeddingService driven.EmbeddingService,
) *HybridSearchService {
	return &HybridSearchService{
		vectorStore:      vectorStore,
		embeddingService: embeddingService,
	}
}

// Search returns candidate document IDs ranked by Reciprocal Rank Fusion
// of the keyword and semantic passes. Candidates matched by neither pass
// follow the fused ranking in their input order, so the result always
// covers the full candidate list and callers can use it directly as a
// display order.
func (s *HybridSearchService) Search(
	ctx context.Context, query string, candidates []domain.CandidateDocument, courseID string,
) ([]string, error) {
	logger.Section("Hybrid Document Search")
	logger.Debug("Query: %q, candidates: %d, course: %s", query, len(candidates), courseID)

	query = strings.TrimSpace(query)
	if query == "" || len(candidates) == 0 {
		logger.Debug("Nothing to rank")
		return nil, nil
	}

	keywordRanked := s.keywordPass(query, candidates)
	logger.Debug("Keyword pass: %d documents scored", len(keywordRanked))

	semanticRanked := s.semanticPass(ctx, query, candidates, courseID)
	logger.Debug("Semantic pass: %d documents above floor", len(semanticRanked))

	fused := fuseRankings(keywordRanked, semanticRanked)
	logger.Info("Hybrid search: %d of %d candidates ranked", len(fused), len(candidates))

	ids := make([]string, 0, len(candidates))
	ranked := make(map[string]bool, len(fused))
	for _, result := range fused {
		ids = append(ids, result.DocumentID)
		ranked[result.DocumentID] = true
	}

	// Candidates neither pass matched keep their input order at the tail.
	for _, doc := range candidates {
		if !ranked[doc.ID] {
			ids = append(ids, doc.ID)
		}
	}

	return ids, nil
}

// keywordPass scores candidates by phrase and term matches against their
// name and text, returning only scoring documents ordered best first.
func (s *HybridSearchService) keywordPass(query string, candidates []domain.CandidateDocument) []rankedDoc {
	phrase := strings.ToLower(query)
	terms := strings.Fields(phrase)

	var ranked []rankedDoc //nolint:prealloc // only scoring docs survive
	for _, doc := range candidates {
		name := strings.ToLower(doc.Name)
		text := strings.ToLower(doc.Text)

		score := 0
		if strings.Contains(name, phrase) {
			score += phraseNameScore
		}
		if strings.Contains(text, phrase) {
			score += phraseTextScore
		}
		for _, term := range terms {
			if strings.Contains(name, term) {
				score += termNameScore
			}
			if strings.Contains(text, term) {
				score += termTextScore
			}
		}

		if score > 0 {
			ranked = append(ranked, rankedDoc{documentID: doc.ID, score: float64(score)})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].documentID < ranked[j].documentID
	})

	return ranked
}

// semanticPass embeds the query, fetches the nearest chunks of the course,
// and collapses them to the best similarity per candidate document.
// Returns nil when no embedder is wired or anything fails; hybrid search
// then degrades to the keyword pass alone.
func (s *HybridSearchService) semanticPass(
	ctx context.Context, query string, candidates []domain.CandidateDocument, courseID string,
) []rankedDoc {
	if s.embeddingService == nil || s.vectorStore == nil {
		logger.Debug("Semantic pass skipped: no embedding service")
		return nil
	}

	embedding, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		logger.Warn("Semantic pass: query embedding failed: %v", err)
		return nil
	}

	hits, err := s.vectorStore.Search(ctx, embedding, courseID, semanticFanOut)
	if err != nil {
		logger.Warn("Semantic pass: vector search failed: %v", err)
		return nil
	}

	candidateSet := make(map[string]bool, len(candidates))
	for _, doc := range candidates {
		candidateSet[doc.ID] = true
	}

	best := make(map[string]float64)
	for _, hit := range hits {
		if hit.Similarity < hybridSimilarityFloor {
			continue
		}
		if !candidateSet[hit.Record.DocumentID] {
			continue
		}
		if hit.Similarity > best[hit.Record.DocumentID] {
			best[hit.Record.DocumentID] = hit.Similarity
		}
	}

	ranked := make([]rankedDoc, 0, len(best))
	for documentID, score := range best {
		ranked = append(ranked, rankedDoc{documentID: documentID, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].documentID < ranked[j].documentID
	})

	return ranked
}

// fuseRankings merges the two passes with Reciprocal Rank Fusion. Ties in
// fused score favor the better keyword rank, then the smaller document ID.
func fuseRankings(keywordRanked, semanticRanked []rankedDoc) []domain.HybridSearchResult {
	byID := make(map[string]*domain.HybridSearchResult)
	result := func(documentID string) *domain.HybridSearchResult {
		if r, ok := byID[documentID]; ok {
			return r
		}
		r := &domain.HybridSearchResult{DocumentID: documentID}
		byID[documentID] = r
		return r
	}

	for rank, doc := range keywordRanked {
		r := result(doc.documentID)
		r.KeywordRank = rank + 1
		r.Score += 1.0 / float64(rrfK+rank+1)
	}
	for rank, doc := range semanticRanked {
		r := result(doc.documentID)
		r.SemanticRank = rank + 1
		r.Similarity = doc.score
		r.Score += 1.0 / float64(rrfK+rank+1)
	}

	fused := make([]domain.HybridSearchResult, 0, len(byID))
	for _, r := range byID {
		fused = append(fused, *r)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		a, b := fused[i], fused[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		aKW, bKW := a.KeywordRank > 0, b.KeywordRank > 0
		switch {
		case aKW && bKW && a.KeywordRank != b.KeywordRank:
			return a.KeywordRank < b.KeywordRank
		case aKW != bKW:
			return aKW
		default:
			return a.DocumentID < b.DocumentID
		}
	})

	return fused
}
