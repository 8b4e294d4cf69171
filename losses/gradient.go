package losses

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gorgonia.org/tensor"
)

// NumericalGradient returns the gradient of the reduced loss l with respect to
// pred, estimated by central finite differences. The result has pred's shape.
func NumericalGradient(l Loss, pred, targ tensor.Tensor, opts ...CallOption) (*tensor.Dense, error) {
	p, err := asDense(pred)
	if err != nil {
		return nil, err
	}
	x, err := float64s(p)
	if err != nil {
		return nil, err
	}
	shape := p.Shape().Clone()

	var ferr error
	f := func(v []float64) float64 {
		in := newDense(append([]float64(nil), v...), shape)
		out, err := l.Forward(in, targ, opts...)
		if err == nil {
			var s float64
			if s, err = Scalar(out); err == nil {
				return s
			}
		}
		if ferr == nil {
			ferr = err
		}
		return math.NaN()
	}
	grad := fd.Gradient(nil, f, x, &fd.Settings{Formula: fd.Central})
	if ferr != nil {
		return nil, errors.Wrap(ferr, "numerical gradient")
	}
	return newDense(grad, shape), nil
}
