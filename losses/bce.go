package losses

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// BCEWithLogitsLoss is binary cross entropy on raw scores, computed without an
// intermediate sigmoid.
type BCEWithLogitsLoss struct {
	Reducer
	// Weight rescales the loss along the last axis.
	Weight []float64
	// PosWeight rescales the loss of positive targets along the last axis.
	PosWeight []float64
}

var _ Criterion = (*BCEWithLogitsLoss)(nil)

func (l *BCEWithLogitsLoss) String() string {
	return fmt.Sprintf("BCEWithLogitsLoss(reduction=%s)", l.Mode)
}

func (l *BCEWithLogitsLoss) Forward(input, target tensor.Tensor, opts ...CallOption) (*tensor.Dense, error) {
	r, err := l.resolve(opts)
	if err != nil {
		return nil, err
	}
	x, y, shape, err := pairwise(input, target)
	if err != nil {
		return nil, errors.Wrap(err, "binary cross entropy with logits")
	}
	if err := checkTrailing("weight", l.Weight, shape); err != nil {
		return nil, err
	}
	if err := checkTrailing("pos_weight", l.PosWeight, shape); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i := range x {
		lw := 1 + (trailing(l.PosWeight, shape, i, 1)-1)*y[i]
		v := (1-y[i])*x[i] + lw*(math.Log1p(math.Exp(-math.Abs(x[i])))+math.Max(-x[i], 0))
		out[i] = trailing(l.Weight, shape, i, 1) * v
	}
	return reduce(out, shape, r), nil
}

// BCELoss is binary cross entropy on probabilities.
type BCELoss struct {
	Reducer
	Weight []float64
}

var _ Criterion = (*BCELoss)(nil)

func (l *BCELoss) String() string {
	return fmt.Sprintf("BCELoss(reduction=%s)", l.Mode)
}

func (l *BCELoss) Forward(input, target tensor.Tensor, opts ...CallOption) (*tensor.Dense, error) {
	r, err := l.resolve(opts)
	if err != nil {
		return nil, err
	}
	p, y, shape, err := pairwise(input, target)
	if err != nil {
		return nil, errors.Wrap(err, "binary cross entropy")
	}
	if err := checkTrailing("weight", l.Weight, shape); err != nil {
		return nil, err
	}
	out := make([]float64, len(p))
	for i := range p {
		if p[i] < 0 || p[i] > 1 || math.IsNaN(p[i]) {
			return nil, errors.Wrapf(ErrInputOutOfRange, "probability %v at %d", p[i], i)
		}
		lp := math.Max(math.Log(p[i]), logClamp)
		lq := math.Max(math.Log(1-p[i]), logClamp)
		out[i] = -trailing(l.Weight, shape, i, 1) * (y[i]*lp + (1-y[i])*lq)
	}
	return reduce(out, shape, r), nil
}

// pairwise reads input and target, which must share a shape, as float64.
func pairwise(input, target tensor.Tensor) ([]float64, []float64, tensor.Shape, error) {
	in, err := asDense(input)
	if err != nil {
		return nil, nil, nil, err
	}
	tg, err := asDense(target)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := sameShape(in, tg); err != nil {
		return nil, nil, nil, err
	}
	x, err := float64s(in)
	if err != nil {
		return nil, nil, nil, err
	}
	y, err := float64s(tg)
	if err != nil {
		return nil, nil, nil, err
	}
	return x, y, in.Shape().Clone(), nil
}

// BCEWithLogitsConfig configures NewBCEWithLogitsLossFlat.
type BCEWithLogitsConfig struct {
	// Axis is the class axis. The zero value is the first axis, so start from
	// DefaultBCEWithLogitsConfig rather than a bare literal.
	Axis int
	// Flatten defaults to true unless Weight or PosWeight is set.
	Flatten  *bool
	Floatify bool
	// Thresh is the decision threshold of Decode.
	Thresh    float64
	Weight    []float64
	PosWeight []float64
	Reduction Reduction
}

func DefaultBCEWithLogitsConfig() BCEWithLogitsConfig {
	return BCEWithLogitsConfig{Axis: -1, Floatify: true, Thresh: 0.5, Reduction: ReductionMean}
}

// NewBCEWithLogitsLossFlat returns a BCEWithLogitsLoss that flattens its input and
// target to vectors. Flattening would break the broadcast of per-class weights
// along the class axis, so with Weight or PosWeight set flattening is disabled and
// an explicit Flatten of true is an error.
func NewBCEWithLogitsLossFlat(cfg BCEWithLogitsConfig) (*Flattened, error) {
	if err := cfg.Reduction.check(); err != nil {
		return nil, err
	}
	flatten := boolOr(cfg.Flatten, true)
	if cfg.Weight != nil || cfg.PosWeight != nil {
		if flatten && cfg.Flatten != nil {
			return nil, errors.Wrap(ErrFlattenWithClassWeights, "BCEWithLogitsLossFlat")
		}
		flatten = false
	}
	crit := &BCEWithLogitsLoss{Reducer: Reducer{Mode: cfg.Reduction}, Weight: cfg.Weight, PosWeight: cfg.PosWeight}
	adapter := AdapterConfig{Axis: cfg.Axis, Flatten: flatten, Floatify: cfg.Floatify}
	return NewFlattened(crit, adapter, Hooks{
		Decode:     Threshold(cfg.Thresh),
		Activation: Elementwise(Sigmoid{}),
	}), nil
}

// BCEConfig configures NewBCELossFlat.
type BCEConfig struct {
	// Axis is the class axis. The zero value is the first axis, so start from
	// DefaultBCEConfig rather than a bare literal.
	Axis      int
	Flatten   *bool
	Floatify  bool
	Weight    []float64
	Reduction Reduction
}

func DefaultBCEConfig() BCEConfig {
	return BCEConfig{Axis: -1, Floatify: true, Reduction: ReductionMean}
}

// NewBCELossFlat returns a BCELoss that flattens its input and target to vectors.
func NewBCELossFlat(cfg BCEConfig) (*Flattened, error) {
	if err := cfg.Reduction.check(); err != nil {
		return nil, err
	}
	crit := &BCELoss{Reducer: Reducer{Mode: cfg.Reduction}, Weight: cfg.Weight}
	adapter := AdapterConfig{Axis: cfg.Axis, Flatten: boolOr(cfg.Flatten, true), Floatify: cfg.Floatify}
	return NewFlattened(crit, adapter, Hooks{}), nil
}
