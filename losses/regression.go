package losses

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// MSELoss is the squared difference between input and target.
type MSELoss struct {
	Reducer
}

// L1Loss is the absolute difference between input and target.
type L1Loss struct {
	Reducer
}

var (
	_ Criterion = (*MSELoss)(nil)
	_ Criterion = (*L1Loss)(nil)
)

func (l *MSELoss) String() string {
	return fmt.Sprintf("MSELoss(reduction=%s)", l.Mode)
}

func (l *MSELoss) Forward(input, target tensor.Tensor, opts ...CallOption) (*tensor.Dense, error) {
	return elementwise("mse", &l.Reducer, input, target, opts, func(d float64) float64 { return d * d })
}

func (l *L1Loss) String() string {
	return fmt.Sprintf("L1Loss(reduction=%s)", l.Mode)
}

func (l *L1Loss) Forward(input, target tensor.Tensor, opts ...CallOption) (*tensor.Dense, error) {
	return elementwise("l1", &l.Reducer, input, target, opts, math.Abs)
}

func elementwise(name string, red *Reducer, input, target tensor.Tensor, opts []CallOption, fn func(float64) float64) (*tensor.Dense, error) {
	r, err := red.resolve(opts)
	if err != nil {
		return nil, err
	}
	x, y, shape, err := pairwise(input, target)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	for i := range x {
		x[i] = fn(x[i] - y[i])
	}
	return reduce(x, shape, r), nil
}

// RegressionConfig configures NewMSELossFlat and NewL1LossFlat.
type RegressionConfig struct {
	// Axis is the class axis. The zero value is the first axis, so start from
	// DefaultRegressionConfig rather than a bare literal.
	Axis      int
	Flatten   *bool
	Floatify  bool
	Reduction Reduction
}

func DefaultRegressionConfig() RegressionConfig {
	return RegressionConfig{Axis: -1, Floatify: true, Reduction: ReductionMean}
}

// NewMSELossFlat returns an MSELoss that flattens its input and target to vectors.
// Its activation only converts the output to float64.
func NewMSELossFlat(cfg RegressionConfig) (*Flattened, error) {
	return newRegressionFlat(&MSELoss{Reducer{Mode: cfg.Reduction}}, cfg)
}

// NewL1LossFlat returns an L1Loss that flattens its input and target to vectors.
func NewL1LossFlat(cfg RegressionConfig) (*Flattened, error) {
	return newRegressionFlat(&L1Loss{Reducer{Mode: cfg.Reduction}}, cfg)
}

func newRegressionFlat(crit Criterion, cfg RegressionConfig) (*Flattened, error) {
	if err := cfg.Reduction.check(); err != nil {
		return nil, err
	}
	adapter := AdapterConfig{Axis: cfg.Axis, Flatten: boolOr(cfg.Flatten, true), Floatify: cfg.Floatify}
	return NewFlattened(crit, adapter, Hooks{Activation: Elementwise(Linear{})}), nil
}
