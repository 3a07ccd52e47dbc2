// Package mcp provides an MCP (Model Context Protocol) server adapter for
// reefrag. It lets AI assistants retrieve study-material context and rank
// course documents over the local RAG index.
package mcp

import "errors"

// ErrMissingRAGService is returned when the RAG service is not provided.
var ErrMissingRAGService = errors.New("mcp: rag service is required")
