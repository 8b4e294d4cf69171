package losses

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

// LabelSmoothingCrossEntropy blends the negative log-likelihood of the target
// with the cross entropy against a uniform distribution over the classes:
//
//	loss = Eps*smooth/c + (1-Eps)*nll
//
// where smooth is the reduced negative sum of the log-probabilities and c the
// number of classes.
type LabelSmoothingCrossEntropy struct {
	Reducer
	Eps float64
	// Weight rescales the negative log-likelihood term per class.
	Weight []float64
}

var _ Loss = (*LabelSmoothingCrossEntropy)(nil)

func NewLabelSmoothingCrossEntropy(eps float64, weight []float64, reduction Reduction) (*LabelSmoothingCrossEntropy, error) {
	if eps < 0 || eps >= 1 || math.IsNaN(eps) {
		return nil, errors.Wrapf(ErrInvalidConfig, "label smoothing eps %v must be in [0, 1)", eps)
	}
	if err := reduction.check(); err != nil {
		return nil, err
	}
	return &LabelSmoothingCrossEntropy{Reducer: Reducer{Mode: reduction}, Eps: eps, Weight: weight}, nil
}

func (l *LabelSmoothingCrossEntropy) String() string {
	return fmt.Sprintf("LabelSmoothingCrossEntropy(eps=%g, reduction=%s)", l.Eps, l.Mode)
}

func (l *LabelSmoothingCrossEntropy) Forward(input, target tensor.Tensor, opts ...CallOption) (*tensor.Dense, error) {
	r, err := l.resolve(opts)
	if err != nil {
		return nil, err
	}
	logp, shape, targets, err := logProbs(input, target)
	if err != nil {
		return nil, errors.Wrap(err, "label smoothing cross entropy")
	}
	n, c := logp.Dims()
	ll, total, err := nll(logp, targets, l.Weight, DefaultIgnoreIndex)
	if err != nil {
		return nil, errors.Wrap(err, "label smoothing cross entropy")
	}
	smooth := make([]float64, n)
	for i := range smooth {
		smooth[i] = -floats.Sum(logp.RawRowView(i))
	}

	blend := func(s, v float64) float64 {
		return s*l.Eps/float64(c) + (1-l.Eps)*v
	}
	switch r {
	case ReductionSum:
		return scalar(blend(floats.Sum(smooth), floats.Sum(ll))), nil
	case ReductionMean:
		return scalar(blend(floats.Sum(smooth)/float64(n), floats.Sum(ll)/total)), nil
	}
	for i := range ll {
		ll[i] = blend(smooth[i], ll[i])
	}
	return newDense(ll, shape), nil
}

// Decode returns the arg-max over the last axis.
func (l *LabelSmoothingCrossEntropy) Decode(out tensor.Tensor) (*tensor.Dense, error) {
	return ArgMax(-1)(out)
}

// Activation returns the softmax over the last axis.
func (l *LabelSmoothingCrossEntropy) Activation(out tensor.Tensor) (*tensor.Dense, error) {
	return Softmax(-1)(out)
}

// LabelSmoothingConfig configures NewLabelSmoothingCrossEntropyFlat.
type LabelSmoothingConfig struct {
	// Axis is the class axis. The zero value is the first axis, so start from
	// DefaultLabelSmoothingConfig rather than a bare literal.
	Axis      int
	Flatten   *bool
	Eps       float64
	Weight    []float64
	Reduction Reduction
}

func DefaultLabelSmoothingConfig() LabelSmoothingConfig {
	return LabelSmoothingConfig{Axis: -1, Eps: 0.1, Reduction: ReductionMean}
}

// NewLabelSmoothingCrossEntropyFlat returns a LabelSmoothingCrossEntropy that
// flattens its input and target. Its hooks work on the last axis.
func NewLabelSmoothingCrossEntropyFlat(cfg LabelSmoothingConfig) (*Flattened, error) {
	crit, err := NewLabelSmoothingCrossEntropy(cfg.Eps, cfg.Weight, cfg.Reduction)
	if err != nil {
		return nil, err
	}
	adapter := DefaultAdapterConfig()
	adapter.Axis = cfg.Axis
	adapter.Flatten = boolOr(cfg.Flatten, true)
	return NewFlattened(crit, adapter, classHooks(-1)), nil
}
