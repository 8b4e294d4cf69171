package losses

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

// ActivationFunction is an elementwise activation.
type ActivationFunction interface {
	Activate(x float64) float64
}

type Sigmoid struct{}

func (s Sigmoid) Activate(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

type Linear struct{}

func (l Linear) Activate(x float64) float64 {
	return x
}

// Elementwise returns a hook applying fn to every element. The result is float64.
func Elementwise(fn ActivationFunction) Hook {
	return func(out tensor.Tensor) (*tensor.Dense, error) {
		d, err := asDense(out)
		if err != nil {
			return nil, err
		}
		vals, err := float64s(d)
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = fn.Activate(v)
		}
		return newDense(vals, d.Shape()), nil
	}
}

// Identity returns its input.
func Identity(out tensor.Tensor) (*tensor.Dense, error) {
	return asDense(out)
}

// Softmax returns a hook computing the softmax along axis.
func Softmax(axis int) Hook {
	return func(out tensor.Tensor) (*tensor.Dense, error) {
		d, err := asDense(out)
		if err != nil {
			return nil, err
		}
		moved, perm, err := moveLast(d, axis)
		if err != nil {
			return nil, err
		}
		m, _, err := logits(moved)
		if err != nil {
			return nil, err
		}
		softmax(m)
		probs := newDense(m.RawMatrix().Data, moved.Shape())
		return permute(probs, invert(perm))
	}
}

// ArgMax returns a hook computing the index of the largest value along axis.
func ArgMax(axis int) Hook {
	return func(out tensor.Tensor) (*tensor.Dense, error) {
		d, err := asDense(out)
		if err != nil {
			return nil, err
		}
		moved, _, err := moveLast(d, axis)
		if err != nil {
			return nil, err
		}
		m, shape, err := logits(moved)
		if err != nil {
			return nil, err
		}
		r, _ := m.Dims()
		idx := make([]int, r)
		for i := range idx {
			idx[i] = floats.MaxIdx(m.RawRowView(i))
		}
		if len(shape) == 0 {
			return tensor.New(tensor.FromScalar(idx[0])), nil
		}
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(idx)), nil
	}
}

// Threshold returns a hook reporting which elements are greater than thresh.
func Threshold(thresh float64) Hook {
	return func(out tensor.Tensor) (*tensor.Dense, error) {
		d, err := asDense(out)
		if err != nil {
			return nil, err
		}
		vals, err := float64s(d)
		if err != nil {
			return nil, err
		}
		mask := make([]bool, len(vals))
		for i, v := range vals {
			mask[i] = v > thresh
		}
		if d.Dims() == 0 {
			return tensor.New(tensor.FromScalar(mask[0])), nil
		}
		return tensor.New(tensor.WithShape(d.Shape().Clone()...), tensor.WithBacking(mask)), nil
	}
}
