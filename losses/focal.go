package losses

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// FocalLoss is cross entropy scaled by (1-p_t)^Gamma, where p_t is the probability
// of the true class, which down-weights well classified examples
// (https://arxiv.org/pdf/1708.02002.pdf). The class weighting factor alpha of the
// paper is Weight.
type FocalLoss struct {
	Reducer
	// Gamma is the focusing parameter. Zero turns the loss into cross entropy.
	Gamma  float64
	Weight []float64
}

var _ Loss = (*FocalLoss)(nil)

func NewFocalLoss(gamma float64, weight []float64, reduction Reduction) (*FocalLoss, error) {
	if gamma < 0 || math.IsNaN(gamma) {
		return nil, errors.Wrapf(ErrInvalidConfig, "focal gamma %v must be non-negative", gamma)
	}
	if err := reduction.check(); err != nil {
		return nil, err
	}
	return &FocalLoss{Reducer: Reducer{Mode: reduction}, Gamma: gamma, Weight: weight}, nil
}

func (l *FocalLoss) String() string {
	return fmt.Sprintf("FocalLoss(gamma=%g, reduction=%s)", l.Gamma, l.Mode)
}

func (l *FocalLoss) Forward(input, target tensor.Tensor, opts ...CallOption) (*tensor.Dense, error) {
	r, err := l.resolve(opts)
	if err != nil {
		return nil, err
	}
	logp, shape, targets, err := logProbs(input, target)
	if err != nil {
		return nil, errors.Wrap(err, "focal loss")
	}
	ce, _, err := nll(logp, targets, l.Weight, DefaultIgnoreIndex)
	if err != nil {
		return nil, errors.Wrap(err, "focal loss")
	}
	for i, v := range ce {
		pt := math.Exp(-v)
		ce[i] = math.Pow(1-pt, l.Gamma) * v
	}
	return reduce(ce, shape, r), nil
}

func (l *FocalLoss) Decode(out tensor.Tensor) (*tensor.Dense, error) {
	return ArgMax(-1)(out)
}

func (l *FocalLoss) Activation(out tensor.Tensor) (*tensor.Dense, error) {
	return Softmax(-1)(out)
}

// FocalConfig configures NewFocalLossFlat.
type FocalConfig struct {
	// Axis is the class axis. The zero value is the first axis, so start from
	// DefaultFocalConfig rather than a bare literal.
	Axis      int
	Flatten   *bool
	Gamma     float64
	Weight    []float64
	Reduction Reduction
}

func DefaultFocalConfig() FocalConfig {
	return FocalConfig{Axis: -1, Gamma: 2, Reduction: ReductionMean}
}

// NewFocalLossFlat is NewCrossEntropyLossFlat with a focal Gamma.
func NewFocalLossFlat(cfg FocalConfig) (*Flattened, error) {
	crit, err := NewFocalLoss(cfg.Gamma, cfg.Weight, cfg.Reduction)
	if err != nil {
		return nil, err
	}
	adapter := DefaultAdapterConfig()
	adapter.Axis = cfg.Axis
	adapter.Flatten = boolOr(cfg.Flatten, true)
	return NewFlattened(crit, adapter, classHooks(cfg.Axis)), nil
}
