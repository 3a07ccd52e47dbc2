package minilm

import (
	"context"
	"fmt"
	"strings"

	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/ports/driven"
	"github.com/reef-labs/reefrag/internal/logger"
)

// Ensure Engine implements the interface.
var _ driven.EmbeddingService = (*Engine)(nil)

// ModelVersion is the embedding model version persisted with every
// vector. Bumping it invalidates all stored embeddings and forces a full
// re-index on the next store initialisation.
const ModelVersion = 2

// Engine converts text into unit-norm embedding vectors by running the
// tokenizer's output through the inference model and mean-pooling the
// masked hidden states.
type Engine struct {
	model driven.InferenceModel
	tok   driven.Tokenizer
	dims  int
}

// NewEngine creates an embedding engine over a tokenizer and an opaque
// inference model. The model's declared hidden size becomes the engine's
// embedding dimensions.
func NewEngine(model driven.InferenceModel, tok driven.Tokenizer) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: no inference model", domain.ErrEmbeddingUnavailable)
	}
	if tok == nil {
		return nil, fmt.Errorf("%w: no tokenizer", domain.ErrEmbeddingUnavailable)
	}

	dims := model.HiddenSize()
	if dims <= 0 {
		return nil, fmt.Errorf("%w: model declares hidden size %d", domain.ErrEmbeddingUnavailable, dims)
	}

	return &Engine{model: model, tok: tok, dims: dims}, nil
}

// Embed generates a unit-norm embedding for the given text.
// Empty or whitespace-only text is rejected with domain.ErrEmptyInput.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyInput
	}

	seq, err := e.tok.Tokenize(text)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	tensor, err := e.model.Infer(ctx, seq.InputIDs, seq.AttentionMask)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}

	pooled, err := meanPool(tensor, seq.AttentionMask)
	if err != nil {
		return nil, fmt.Errorf("mean pooling: %w", err)
	}

	return domain.L2Normalize(pooled), nil
}

// EmbedBatch embeds each text independently. An individual failure or
// empty-after-trim input yields a zero vector for that item rather than
// aborting the batch.
//
// Items are processed sequentially on purpose: this bounds peak memory
// and keeps the inference engine from being saturated by a large
// document's chunk batch.
func (e *Engine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			logger.Warn("batch embed item %d degraded to zero vector: %v", i, err)
			results[i] = make([]float32, e.dims)
			continue
		}
		results[i] = vec
	}

	return results, nil
}

// Dimensions returns the embedding vector size.
func (e *Engine) Dimensions() int {
	return e.dims
}

// ModelVersion returns the embedding model version number.
func (e *Engine) ModelVersion() int {
	return ModelVersion
}

// Close releases the inference model handle.
func (e *Engine) Close() error {
	return e.model.Close()
}

// meanPool averages the per-token hidden states over the positions where
// the attention mask is 1.
//
// The sequence and hidden axes are resolved from the tensor's declared
// axis semantics only; if either cannot be unambiguously identified the
// pooling fails rather than defaulting silently. When every position is
// masked out, the unnormalised sum is returned; there is never a division
// by zero.
func meanPool(t *driven.Tensor, mask []int32) ([]float32, error) {
	if t == nil {
		return nil, fmt.Errorf("nil tensor")
	}
	if len(t.Dims) != len(t.Axes) {
		return nil, fmt.Errorf("%w: %d dims with %d axis declarations",
			domain.ErrAmbiguousShape, len(t.Dims), len(t.Axes))
	}

	seqAxis, ok := t.AxisIndex(driven.AxisSequence)
	if !ok {
		return nil, fmt.Errorf("%w: no unambiguous sequence axis", domain.ErrAmbiguousShape)
	}
	hidAxis, ok := t.AxisIndex(driven.AxisHidden)
	if !ok {
		return nil, fmt.Errorf("%w: no unambiguous hidden axis", domain.ErrAmbiguousShape)
	}

	// A batch axis is tolerated but must be a singleton.
	if batchAxis, ok := t.AxisIndex(driven.AxisBatch); ok && t.Dims[batchAxis] != 1 {
		return nil, fmt.Errorf("batch axis has size %d, want 1", t.Dims[batchAxis])
	}

	total := 1
	for _, d := range t.Dims {
		total *= d
	}
	if total != len(t.Data) {
		return nil, fmt.Errorf("tensor data length %d does not match shape %v", len(t.Data), t.Dims)
	}

	seqLen := t.Dims[seqAxis]
	hidden := t.Dims[hidAxis]
	if seqLen > len(mask) {
		return nil, fmt.Errorf("sequence axis %d longer than mask %d", seqLen, len(mask))
	}

	// Row-major strides from the declared shape.
	strides := make([]int, len(t.Dims))
	stride := 1
	for i := len(t.Dims) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= t.Dims[i]
	}

	sum := make([]float32, hidden)
	count := 0
	for pos := 0; pos < seqLen; pos++ {
		if mask[pos] == 0 {
			continue
		}
		base := pos * strides[seqAxis]
		for h := 0; h < hidden; h++ {
			sum[h] += t.Data[base+h*strides[hidAxis]]
		}
		count++
	}

	if count == 0 {
		return sum, nil
	}

	for h := range sum {
		sum[h] /= float32(count)
	}
	return sum, nil
}
