package losses

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// DiceLoss is 1 minus the Dice coefficient between the softmax of the prediction
// and the one-hot encoded target, computed per example and class over all
// spatial dimensions.
type DiceLoss struct {
	Reducer
	// Axis is the class axis of the prediction, 1 for (batch, class, ...) maps.
	Axis int
	// Smooth keeps the ratio defined when both masks are empty.
	Smooth float64
	// SquareInUnion squares the predictions in the union, which steepens the
	// gradients.
	SquareInUnion bool
}

var _ Loss = (*DiceLoss)(nil)

// DiceConfig configures NewDiceLoss.
type DiceConfig struct {
	// Axis is the class axis. The zero value is the first axis, so start from
	// DefaultDiceConfig rather than a bare literal.
	Axis          int
	Smooth        float64
	Reduction     Reduction
	SquareInUnion bool
}

func DefaultDiceConfig() DiceConfig {
	return DiceConfig{Axis: 1, Smooth: 1e-6, Reduction: ReductionSum}
}

func NewDiceLoss(cfg DiceConfig) (*DiceLoss, error) {
	if cfg.Smooth < 0 || math.IsNaN(cfg.Smooth) {
		return nil, errors.Wrapf(ErrInvalidConfig, "dice smooth %v must be non-negative", cfg.Smooth)
	}
	if err := cfg.Reduction.check(); err != nil {
		return nil, err
	}
	return &DiceLoss{
		Reducer:       Reducer{Mode: cfg.Reduction},
		Axis:          cfg.Axis,
		Smooth:        cfg.Smooth,
		SquareInUnion: cfg.SquareInUnion,
	}, nil
}

func (l *DiceLoss) String() string {
	return fmt.Sprintf("DiceLoss(axis=%d, smooth=%g, reduction=%s, square_in_union=%t)",
		l.Axis, l.Smooth, l.Mode, l.SquareInUnion)
}

// Forward one-hot encodes targ, which holds class indices, and returns the Dice
// loss of shape (batch, class) before reduction.
func (l *DiceLoss) Forward(pred, targ tensor.Tensor, opts ...CallOption) (*tensor.Dense, error) {
	r, err := l.resolve(opts)
	if err != nil {
		return nil, err
	}
	p, err := asDense(pred)
	if err != nil {
		return nil, err
	}
	if p.Dims() < 2 {
		return nil, errors.Wrapf(ErrShapeMismatch, "dice loss needs (batch, class, ...) predictions, got %v", p.Shape())
	}
	if err := nonEmpty(p); err != nil {
		return nil, errors.Wrap(err, "dice loss")
	}
	ax, err := normAxis(l.Axis, p.Dims())
	if err != nil {
		return nil, err
	}
	mask, err := OneHot(targ, p.Shape()[ax], l.Axis)
	if err != nil {
		return nil, errors.Wrap(err, "dice loss")
	}
	if !mask.Shape().Eq(p.Shape()) {
		return nil, errors.Wrapf(ErrOneHotTarget, "prediction %v, encoded target %v", p.Shape(), mask.Shape())
	}
	probs, err := l.Activation(p)
	if err != nil {
		return nil, err
	}
	if ax != 1 {
		// (batch, class, spatial...) with the other axes in order.
		perm := make([]int, 0, p.Dims())
		for i := 0; i < p.Dims(); i++ {
			if i != ax {
				perm = append(perm, i)
			}
		}
		perm = append(perm[:1], append([]int{ax}, perm[1:]...)...)
		if probs, err = permute(probs, perm); err != nil {
			return nil, err
		}
		if mask, err = permute(mask, perm); err != nil {
			return nil, err
		}
	}
	x, err := float64s(probs)
	if err != nil {
		return nil, err
	}
	y, err := float64s(mask)
	if err != nil {
		return nil, err
	}

	shape := probs.Shape()
	spatial := 1
	for _, s := range shape[2:] {
		spatial *= s
	}
	out := make([]float64, shape[0]*shape[1])
	for o := range out {
		var inter, union float64
		for i := o * spatial; i < (o+1)*spatial; i++ {
			inter += x[i] * y[i]
			if l.SquareInUnion {
				union += x[i]*x[i] + y[i]
			} else {
				union += x[i] + y[i]
			}
		}
		out[o] = 1 - (2*inter+l.Smooth)/(union+l.Smooth)
	}
	return reduce(out, shape[:2], r), nil
}

// Decode returns the arg-max along the class axis.
func (l *DiceLoss) Decode(out tensor.Tensor) (*tensor.Dense, error) {
	return ArgMax(l.Axis)(out)
}

// Activation returns the softmax along the class axis.
func (l *DiceLoss) Activation(out tensor.Tensor) (*tensor.Dense, error) {
	return Softmax(l.Axis)(out)
}
