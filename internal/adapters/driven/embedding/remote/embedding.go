// Package remote provides a server-delegated embedding service adapter.
// An external inference server computes the vectors; this adapter only
// handles transport, rate limiting, and retry.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/ports/driven"
	"github.com/reef-labs/reefrag/internal/logger"
	"github.com/reef-labs/reefrag/internal/retry"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL      = "http://localhost:11434"
	DefaultModel        = "all-minilm"
	DefaultTimeout      = 30 * time.Second
	DefaultDimensions   = domain.EmbeddingDimensions
	DefaultModelVersion = 2
	DefaultRateLimit    = 8 // requests per second
)

// Config holds configuration for the remote embedding service.
type Config struct {
	// BaseURL is the embedding server base URL.
	BaseURL string

	// Model is the embedding model to request.
	Model string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Dimensions is the embedding vector size served by the model.
	Dimensions int

	// ModelVersion gates the vector store; it must change whenever the
	// served model changes incompatibly.
	ModelVersion int

	// RateLimit is the maximum request rate per second.
	RateLimit float64

	// Retry is the budget for transient failures (rate limiting).
	Retry retry.Policy
}

// EmbeddingService generates embeddings via an external server.
type EmbeddingService struct {
	client       *http.Client
	baseURL      string
	model        string
	dimensions   int
	modelVersion int
	limiter      *rate.Limiter
	retryPolicy  retry.Policy
}

// embedRequest is the server API request format.
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse is the server API response format.
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewEmbeddingService creates a new remote embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.ModelVersion == 0 {
		cfg.ModelVersion = DefaultModelVersion
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultPolicy
	}

	return &EmbeddingService{
		client:       &http.Client{Timeout: cfg.Timeout},
		baseURL:      cfg.BaseURL,
		model:        cfg.Model,
		dimensions:   cfg.Dimensions,
		modelVersion: cfg.ModelVersion,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		retryPolicy:  cfg.Retry,
	}
}

// Embed generates a unit-norm embedding for the given text. A rate-limited
// response is retried with exponential backoff within the configured
// budget before being surfaced.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyInput
	}

	var embedding []float32
	err := retry.Do(ctx, s.retryPolicy, func(ctx context.Context) error {
		vec, err := s.embedOnce(ctx, text)
		if err != nil {
			return err
		}
		embedding = vec
		return nil
	})
	if err != nil {
		return nil, err
	}

	return embedding, nil
}

// embedOnce performs a single request.
func (s *EmbeddingService) embedOnce(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	jsonBody, err := json.Marshal(embedRequest{Model: s.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, retry.Transient(fmt.Errorf("%w: embedding server", domain.ErrRateLimited))
	}
	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("embedding server error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("embedding server error (status %d): %s", resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(embedResp.Embedding) != s.dimensions {
		return nil, fmt.Errorf("%w: server returned %d dimensions, want %d",
			domain.ErrDimensionMismatch, len(embedResp.Embedding), s.dimensions)
	}

	embedding := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		embedding[i] = float32(v)
	}

	// Normalise defensively; well-behaved servers already return unit
	// vectors and normalising twice is a no-op.
	return domain.L2Normalize(embedding), nil
}

// EmbedBatch embeds each text independently; a failed or empty item
// degrades to a zero vector rather than aborting the batch.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			logger.Warn("batch embed item %d degraded to zero vector: %v", i, err)
			embeddings[i] = make([]float32, s.dimensions)
			continue
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelVersion returns the embedding model version number.
func (s *EmbeddingService) ModelVersion() int {
	return s.modelVersion
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
