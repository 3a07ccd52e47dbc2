// Package memory provides an in-memory vector store, used for tests and
// for ephemeral sessions where nothing should touch disk.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/ports/driven"
)

// Store is an in-memory vector store safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	records      []domain.VectorRecord
	modelVersion int
	initialized  bool
}

var _ driven.VectorStore = (*Store)(nil)

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{}
}

// Initialize checks the model version marker; a mismatch wipes records.
func (s *Store) Initialize(_ context.Context, modelVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized && s.modelVersion != modelVersion {
		s.records = nil
	}
	s.modelVersion = modelVersion
	s.initialized = true
	return nil
}

// Index stores one record per chunk/embedding pair, replacing any prior
// records of the same documents.
func (s *Store) Index(_ context.Context, chunks []domain.TextChunk, embeddings [][]float32, courseID string) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks, %d embeddings",
			domain.ErrLengthMismatch, len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := make(map[string]bool)
	for _, chunk := range chunks {
		replaced[chunk.DocumentID] = true
	}
	s.records = deleteWhere(s.records, func(r domain.VectorRecord) bool {
		return replaced[r.DocumentID]
	})

	for i, chunk := range chunks {
		embedding := make([]float32, len(embeddings[i]))
		copy(embedding, embeddings[i])

		s.records = append(s.records, domain.VectorRecord{
			ChunkID:      chunk.ID,
			DocumentID:   chunk.DocumentID,
			CourseID:     courseID,
			DocumentType: chunk.DocumentType,
			Embedding:    embedding,
			Text:         chunk.Text,
			Heading:      chunk.Heading,
			Page:         chunk.Page,
			Position:     chunk.Position,
		})
	}
	return nil
}

// Search returns the topK course records by cosine similarity, descending.
func (s *Store) Search(_ context.Context, query []float32, courseID string, topK int) ([]domain.VectorSearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.VectorSearchResult //nolint:prealloc // scoped subset
	for _, record := range s.records {
		if record.CourseID != courseID {
			continue
		}
		results = append(results, domain.VectorSearchResult{
			Record:     record,
			Similarity: domain.CosineSimilarity(query, record.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteDocument removes all records of one document.
func (s *Store) DeleteDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = deleteWhere(s.records, func(r domain.VectorRecord) bool {
		return r.DocumentID == documentID
	})
	return nil
}

// DeleteCourse removes all records of one course.
func (s *Store) DeleteCourse(_ context.Context, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = deleteWhere(s.records, func(r domain.VectorRecord) bool {
		return r.CourseID == courseID
	})
	return nil
}

// DeleteAll removes every record, keeping the version marker.
func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}

// ChunkCount returns the number of records stored for a document.
func (s *Store) ChunkCount(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.records {
		if record.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

// Documents returns the distinct indexed documents of a course with text
// reassembled from chunks in position order.
func (s *Store) Documents(_ context.Context, courseID string) ([]domain.CandidateDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDoc := make(map[string][]domain.VectorRecord)
	var order []string
	for _, record := range s.records {
		if record.CourseID != courseID {
			continue
		}
		if _, ok := byDoc[record.DocumentID]; !ok {
			order = append(order, record.DocumentID)
		}
		byDoc[record.DocumentID] = append(byDoc[record.DocumentID], record)
	}
	sort.Strings(order)

	docs := make([]domain.CandidateDocument, 0, len(order))
	for _, documentID := range order {
		records := byDoc[documentID]
		sort.Slice(records, func(i, j int) bool {
			return records[i].Position < records[j].Position
		})

		doc := domain.CandidateDocument{ID: documentID, Name: documentID}
		if records[0].Heading != "" {
			doc.Name = records[0].Heading
		}
		for i, record := range records {
			if i > 0 {
				doc.Text += "\n\n"
			}
			doc.Text += record.Text
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// deleteWhere removes records matching the predicate, preserving order.
func deleteWhere(records []domain.VectorRecord, match func(domain.VectorRecord) bool) []domain.VectorRecord {
	kept := records[:0]
	for _, record := range records {
		if !match(record) {
			kept = append(kept, record)
		}
	}
	return kept
}
