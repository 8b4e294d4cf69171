package losses

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// CrossEntropyLoss is the negative log-likelihood of the softmax of class scores
// against integer class targets.
type CrossEntropyLoss struct {
	Reducer
	// Weight rescales the loss of each class. The mean is taken over the weights
	// of the targets.
	Weight []float64
	// IgnoreIndex is a target value that contributes nothing to the loss.
	IgnoreIndex int
}

var _ Loss = (*CrossEntropyLoss)(nil)

func NewCrossEntropyLoss(weight []float64, reduction Reduction) *CrossEntropyLoss {
	return &CrossEntropyLoss{
		Reducer:     Reducer{Mode: reduction},
		Weight:      weight,
		IgnoreIndex: DefaultIgnoreIndex,
	}
}

func (l *CrossEntropyLoss) String() string {
	return fmt.Sprintf("CrossEntropyLoss(ignore_index=%d, reduction=%s)", l.IgnoreIndex, l.Mode)
}

func (l *CrossEntropyLoss) Forward(input, target tensor.Tensor, opts ...CallOption) (*tensor.Dense, error) {
	r, err := l.resolve(opts)
	if err != nil {
		return nil, err
	}
	logp, shape, targets, err := logProbs(input, target)
	if err != nil {
		return nil, errors.Wrap(err, "cross entropy")
	}
	out, total, err := nll(logp, targets, l.Weight, l.IgnoreIndex)
	if err != nil {
		return nil, errors.Wrap(err, "cross entropy")
	}
	if r == ReductionMean {
		return scalar(floats.Sum(out) / total), nil
	}
	return reduce(out, shape, r), nil
}

// Decode returns the arg-max over the last axis.
func (l *CrossEntropyLoss) Decode(out tensor.Tensor) (*tensor.Dense, error) {
	return ArgMax(-1)(out)
}

// Activation returns the softmax over the last axis.
func (l *CrossEntropyLoss) Activation(out tensor.Tensor) (*tensor.Dense, error) {
	return Softmax(-1)(out)
}

// logProbs returns the log-softmax rows of input, its batch shape and the class
// indices of target.
func logProbs(input, target tensor.Tensor) (*mat.Dense, tensor.Shape, []int, error) {
	in, err := asDense(input)
	if err != nil {
		return nil, nil, nil, err
	}
	tg, err := asDense(target)
	if err != nil {
		return nil, nil, nil, err
	}
	logp, shape, err := logits(in)
	if err != nil {
		return nil, nil, nil, err
	}
	logSoftmax(logp)
	targets, err := integers(tg)
	if err != nil {
		return nil, nil, nil, err
	}
	return logp, shape, targets, nil
}

// CrossEntropyConfig configures NewCrossEntropyLossFlat.
type CrossEntropyConfig struct {
	// Axis is the class axis. The zero value is the first axis, so start from
	// DefaultCrossEntropyConfig rather than a bare literal.
	Axis        int
	Flatten     *bool
	Weight      []float64
	IgnoreIndex int
	Reduction   Reduction
}

func DefaultCrossEntropyConfig() CrossEntropyConfig {
	return CrossEntropyConfig{
		Axis:        -1,
		IgnoreIndex: DefaultIgnoreIndex,
		Reduction:   ReductionMean,
	}
}

// NewCrossEntropyLossFlat returns a CrossEntropyLoss that flattens its input and
// target. It decodes by arg-max and activates by softmax along the class axis.
func NewCrossEntropyLossFlat(cfg CrossEntropyConfig) (*Flattened, error) {
	if err := cfg.Reduction.check(); err != nil {
		return nil, err
	}
	crit := NewCrossEntropyLoss(cfg.Weight, cfg.Reduction)
	crit.IgnoreIndex = cfg.IgnoreIndex
	adapter := DefaultAdapterConfig()
	adapter.Axis = cfg.Axis
	adapter.Flatten = boolOr(cfg.Flatten, true)
	return NewFlattened(crit, adapter, classHooks(cfg.Axis)), nil
}
