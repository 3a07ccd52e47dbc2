package mcp

import (
	"context"

	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/ports/driving"
)

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	ragCtx domain.RAGContext
	opts   driving.ContextOptions
	err    error
}

func (m *mockRAGService) IndexDocument(
	_ context.Context, _ string, _ domain.DocumentType, _, _ string,
) error {
	return m.err
}

func (m *mockRAGService) GetContext(
	_ context.Context, _, _ string, opts driving.ContextOptions,
) (domain.RAGContext, error) {
	m.opts = opts
	return m.ragCtx, m.err
}

func (m *mockRAGService) IsIndexed(_ context.Context, _ string) (bool, error) {
	return false, m.err
}

func (m *mockRAGService) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockRAGService) DeleteCourse(_ context.Context, _ string) error {
	return m.err
}

// mockHybridSearchService is a mock implementation of driving.HybridSearchService.
type mockHybridSearchService struct {
	ranked     []string
	candidates []domain.CandidateDocument
	err        error
}

func (m *mockHybridSearchService) Search(
	_ context.Context, _ string, candidates []domain.CandidateDocument, _ string,
) ([]string, error) {
	m.candidates = candidates
	return m.ranked, m.err
}
