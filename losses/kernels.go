package losses

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// DefaultIgnoreIndex is the target value skipped by the negative log-likelihood.
const DefaultIgnoreIndex = -100

// logClamp bounds the logarithms taken by BCELoss.
const logClamp = -100

// logits reads t as rows of class scores along its last axis. The returned shape is
// the batch shape, t's shape without the class axis.
func logits(t *tensor.Dense) (*mat.Dense, tensor.Shape, error) {
	if t.Dims() == 0 {
		return nil, nil, errors.Wrap(ErrShapeMismatch, "class scores need at least one dimension")
	}
	shape := t.Shape()
	c := shape[len(shape)-1]
	vals, err := float64s(t)
	if err != nil {
		return nil, nil, err
	}
	if c == 0 || len(vals) == 0 {
		return nil, nil, errors.Wrapf(ErrShapeMismatch, "empty class scores %v", shape)
	}
	return mat.NewDense(len(vals)/c, c, vals), shape[:len(shape)-1].Clone(), nil
}

// logSoftmax replaces every row of m by its log-softmax.
func logSoftmax(m *mat.Dense) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		floats.AddConst(-floats.LogSumExp(row), row)
	}
}

func softmax(m *mat.Dense) {
	logSoftmax(m)
	m.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, m)
}

// nll returns the per-row negative log-likelihood of targets under logp, and the
// total weight of the rows that were not ignored.
func nll(logp *mat.Dense, targets []int, weight []float64, ignore int) ([]float64, float64, error) {
	n, c := logp.Dims()
	if len(targets) != n {
		return nil, 0, errors.Wrapf(ErrShapeMismatch, "%d targets for %d rows of scores", len(targets), n)
	}
	if weight != nil && len(weight) != c {
		return nil, 0, errors.Wrapf(ErrShapeMismatch, "%d class weights for %d classes", len(weight), c)
	}
	out := make([]float64, n)
	var total float64
	for i, y := range targets {
		if y == ignore {
			continue
		}
		if y < 0 || y >= c {
			return nil, 0, errors.Wrapf(ErrTargetOutOfRange, "target %d with %d classes", y, c)
		}
		w := 1.0
		if weight != nil {
			w = weight[y]
		}
		out[i] = -w * logp.At(i, y)
		total += w
	}
	return out, total, nil
}

func reduce(vals []float64, shape tensor.Shape, r Reduction) *tensor.Dense {
	switch r {
	case ReductionSum:
		return scalar(floats.Sum(vals))
	case ReductionMean:
		return scalar(floats.Sum(vals) / float64(len(vals)))
	}
	return newDense(vals, shape)
}

// trailing returns the value of v broadcast along the last axis of shape at flat
// index i. A nil v broadcasts as def.
func trailing(v []float64, shape tensor.Shape, i int, def float64) float64 {
	if v == nil {
		return def
	}
	return v[i%shape[len(shape)-1]]
}

func checkTrailing(name string, v []float64, shape tensor.Shape) error {
	if v == nil {
		return nil
	}
	if len(shape) == 0 || shape[len(shape)-1] != len(v) {
		return errors.Wrapf(ErrShapeMismatch, "%s of length %d does not broadcast over %v", name, len(v), shape)
	}
	return nil
}

func sameShape(input, target *tensor.Dense) error {
	if !input.Shape().Eq(target.Shape()) {
		return errors.Wrapf(ErrShapeMismatch, "input %v and target %v", input.Shape(), target.Shape())
	}
	return nil
}
