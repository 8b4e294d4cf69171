package losses

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Loss is a loss function together with its inference-time hooks.
type Loss interface {
	// Forward returns the loss of pred against targ: a scalar unless the
	// reduction is ReductionNone.
	Forward(pred, targ tensor.Tensor, opts ...CallOption) (*tensor.Dense, error)
	// Decode converts model output to the target format, e.g. class indices.
	Decode(out tensor.Tensor) (*tensor.Dense, error)
	// Activation converts model output to the distribution the loss models.
	Activation(out tensor.Tensor) (*tensor.Dense, error)
	Reduction() Reduction
	SetReduction(r Reduction)
	fmt.Stringer
}

// Criterion is an elementary loss over normalized tensors: a (batch, class) matrix
// or a flat vector.
type Criterion interface {
	Forward(input, target tensor.Tensor, opts ...CallOption) (*tensor.Dense, error)
	Reduction() Reduction
	SetReduction(r Reduction)
	fmt.Stringer
}

// Hook maps raw model output to another tensor.
type Hook func(out tensor.Tensor) (*tensor.Dense, error)

// Hooks are the Decode and Activation functions of a loss. Nil hooks return their
// input unchanged.
type Hooks struct {
	Decode     Hook
	Activation Hook
}

// CallOption overrides configuration for a single Forward call.
type CallOption func(*callOptions)

type callOptions struct {
	reduction Reduction
}

// WithReduction overrides the reduction of one call.
func WithReduction(r Reduction) CallOption {
	return func(o *callOptions) {
		o.reduction = r
	}
}

// Reducer holds the reduction of a Criterion. Its zero value reduces by mean.
type Reducer struct {
	Mode Reduction
}

func (r *Reducer) Reduction() Reduction {
	return r.Mode
}

// SetReduction sets the reduction style. It must not be called concurrently with
// Forward.
func (r *Reducer) SetReduction(m Reduction) {
	r.Mode = m
}

func (r *Reducer) resolve(opts []CallOption) (Reduction, error) {
	o := callOptions{reduction: r.Mode}
	for _, opt := range opts {
		opt(&o)
	}
	return o.reduction, o.reduction.check()
}
