package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/reef-labs/reefrag/internal/core/ports/driving"
)

// GetContextInput is the input schema for the get_context tool.
type GetContextInput struct {
	Query     string `json:"query" jsonschema:"the question to retrieve course material for"`
	CourseID  string `json:"course_id" jsonschema:"the course whose material should be searched"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"number of chunks to consider (default 5)"`
	MaxTokens int    `json:"max_tokens,omitempty" jsonschema:"approximate token budget for the context (default 2000)"`
}

// GetContextOutput is the output schema for the get_context tool.
type GetContextOutput struct {
	Context    string         `json:"context"`
	ChunkCount int            `json:"chunk_count"`
	Sources    []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput describes one chunk's provenance.
type SourceOutput struct {
	DocumentID   string  `json:"document_id"`
	DocumentType string  `json:"document_type"`
	Heading      string  `json:"heading,omitempty"`
	Page         int     `json:"page,omitempty"`
	Similarity   float64 `json:"similarity"`
}

// RankDocumentsInput is the input schema for the rank_documents tool.
type RankDocumentsInput struct {
	Query    string `json:"query" jsonschema:"the search query to rank documents against"`
	CourseID string `json:"course_id" jsonschema:"the course whose documents should be ranked"`
}

// RankDocumentsOutput is the output schema for the rank_documents tool.
type RankDocumentsOutput struct {
	DocumentIDs []string `json:"document_ids"`
	Count       int      `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_context",
		Description: "Retrieve relevant course material for a question, formatted for prompting",
	}, s.handleGetContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rank_documents",
		Description: "Rank a course's indexed documents by relevance to a query",
	}, s.handleRankDocuments)
}

// handleGetContext handles the get_context tool invocation.
func (s *Server) handleGetContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetContextInput,
) (*mcp.CallToolResult, GetContextOutput, error) {
	opts := driving.ContextOptions{
		TopK:      input.TopK,
		MaxTokens: input.MaxTokens,
	}

	ragCtx, err := s.ports.RAG.GetContext(ctx, input.Query, input.CourseID, opts)
	if err != nil {
		return nil, GetContextOutput{}, err
	}

	output := GetContextOutput{
		Context:    ragCtx.FormattedPrompt,
		ChunkCount: ragCtx.ChunkCount,
		Sources:    make([]SourceOutput, len(ragCtx.Sources)),
	}
	for i, src := range ragCtx.Sources {
		output.Sources[i] = SourceOutput{
			DocumentID:   src.DocumentID,
			DocumentType: string(src.DocumentType),
			Heading:      src.Heading,
			Page:         src.Page,
			Similarity:   src.Similarity,
		}
	}

	return nil, output, nil
}

// handleRankDocuments handles the rank_documents tool invocation.
func (s *Server) handleRankDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RankDocumentsInput,
) (*mcp.CallToolResult, RankDocumentsOutput, error) {
	if s.ports.Search == nil || s.ports.Store == nil {
		return nil, RankDocumentsOutput{}, errors.New("mcp: document ranking unavailable")
	}

	candidates, err := s.ports.Store.Documents(ctx, input.CourseID)
	if err != nil {
		return nil, RankDocumentsOutput{}, err
	}

	ranked, err := s.ports.Search.Search(ctx, input.Query, candidates, input.CourseID)
	if err != nil {
		return nil, RankDocumentsOutput{}, err
	}

	return nil, RankDocumentsOutput{
		DocumentIDs: ranked,
		Count:       len(ranked),
	}, nil
}
