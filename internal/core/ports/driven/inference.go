package driven

import "context"

// Axis declares the semantic meaning of one tensor dimension. The
// inference model reports these alongside the raw shape so that pooling
// code never has to guess an axis from its size.
type Axis int

// Recognised axis kinds.
const (
	// AxisBatch is the batch dimension (size 1 for single-input inference).
	AxisBatch Axis = iota

	// AxisSequence is the token-position dimension.
	AxisSequence

	// AxisHidden is the per-token hidden-state dimension.
	AxisHidden
)

// String returns the axis name for diagnostics.
func (a Axis) String() string {
	switch a {
	case AxisBatch:
		return "batch"
	case AxisSequence:
		return "sequence"
	case AxisHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Tensor is a dense row-major float tensor with declared axis semantics.
// Dims and Axes are parallel: Axes[i] names the meaning of Dims[i].
type Tensor struct {
	// Dims is the tensor shape.
	Dims []int

	// Axes declares the semantic kind of each dimension.
	Axes []Axis

	// Data holds the values in row-major order; its length is the
	// product of Dims.
	Data []float32
}

// AxisIndex returns the position of the first dimension declared with the
// given kind, and whether exactly one such dimension exists. Duplicate
// declarations make the axis ambiguous.
func (t *Tensor) AxisIndex(kind Axis) (int, bool) {
	idx := -1
	for i, a := range t.Axes {
		if a != kind {
			continue
		}
		if idx >= 0 {
			return -1, false
		}
		idx = i
	}
	if idx < 0 {
		return -1, false
	}
	return idx, true
}

// InferenceModel is the opaque numeric model behind the embedding engine.
// Given fixed-length input IDs and attention mask it returns the per-token
// hidden states. The implementation (on-device accelerator, CPU, remote
// call) is irrelevant as long as the contract holds.
//
// The call has no cancellation semantics beyond "let it finish"; callers
// cancel upstream by declining to issue the call.
type InferenceModel interface {
	// Infer runs the model. Both slices have the tokenizer's maximum
	// sequence length. The returned tensor must declare a sequence axis
	// and a hidden axis.
	Infer(ctx context.Context, inputIDs, attentionMask []int32) (*Tensor, error)

	// HiddenSize returns the model's declared hidden dimension.
	HiddenSize() int

	// Close releases the model handle.
	Close() error
}
