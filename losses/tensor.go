package losses

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// FromFloat64s returns a float64 tensor backed by data. Without a shape the tensor
// is a vector.
func FromFloat64s(data []float64, shape ...int) *tensor.Dense {
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	return tensor.New(tensor.Of(tensor.Float64), tensor.WithShape(shape...), tensor.WithBacking(data))
}

// FromInts returns an int tensor backed by data, typically class labels.
func FromInts(data []int, shape ...int) *tensor.Dense {
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	return tensor.New(tensor.Of(tensor.Int), tensor.WithShape(shape...), tensor.WithBacking(data))
}

// Scalar returns the value of a single-element tensor, such as a reduced loss.
func Scalar(t tensor.Tensor) (float64, error) {
	d, err := asDense(t)
	if err != nil {
		return 0, err
	}
	vals, err := float64s(d)
	if err != nil {
		return 0, err
	}
	if len(vals) != 1 {
		return 0, errors.Wrapf(ErrNotScalar, "shape %v", d.Shape())
	}
	return vals[0], nil
}

func asDense(t tensor.Tensor) (*tensor.Dense, error) {
	d, ok := t.(*tensor.Dense)
	if !ok {
		return nil, errors.Errorf("unsupported tensor type %T", t)
	}
	return d, nil
}

func nonEmpty(t *tensor.Dense) error {
	if t.Dims() > 0 && t.Size() == 0 {
		return errors.Wrapf(ErrShapeMismatch, "empty tensor of shape %v", t.Shape())
	}
	return nil
}

func isFloat(dt tensor.Dtype) bool {
	return dt == tensor.Float64 || dt == tensor.Float32
}

func isNarrowInt(dt tensor.Dtype) bool {
	return dt == tensor.Int8 || dt == tensor.Int16 || dt == tensor.Int32
}

// float64s copies the elements of t in row-major order. Tensors without elements
// are rejected.
func float64s(t *tensor.Dense) ([]float64, error) {
	if err := nonEmpty(t); err != nil {
		return nil, err
	}
	switch data := t.Data().(type) {
	case []float64:
		return append([]float64(nil), data...), nil
	case []float32:
		return convert(data), nil
	case []int:
		return convert(data), nil
	case []int64:
		return convert(data), nil
	case []int32:
		return convert(data), nil
	case []int16:
		return convert(data), nil
	case []int8:
		return convert(data), nil
	case []uint8:
		return convert(data), nil
	case []bool:
		out := make([]float64, len(data))
		for i, b := range data {
			if b {
				out[i] = 1
			}
		}
		return out, nil
	case float64:
		return []float64{data}, nil
	case float32:
		return []float64{float64(data)}, nil
	case int:
		return []float64{float64(data)}, nil
	case int64:
		return []float64{float64(data)}, nil
	case int32:
		return []float64{float64(data)}, nil
	}
	return nil, errors.Errorf("unsupported dtype %v", t.Dtype())
}

type number interface {
	~float32 | ~float64 | ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8
}

func convert[T number](data []T) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// integers reads t as class indices, truncating floating values.
func integers(t *tensor.Dense) ([]int, error) {
	vals, err := float64s(t)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = int(v)
	}
	return out, nil
}

func newDense(vals []float64, shape tensor.Shape) *tensor.Dense {
	if len(shape) == 0 {
		return tensor.New(tensor.FromScalar(vals[0]))
	}
	return tensor.New(tensor.WithShape(shape.Clone()...), tensor.WithBacking(vals))
}

func scalar(v float64) *tensor.Dense {
	return tensor.New(tensor.FromScalar(v))
}

// cast returns a copy of t converted to dt. Only tensor.Float64 and tensor.Int
// are produced.
func cast(t *tensor.Dense, dt tensor.Dtype) (*tensor.Dense, error) {
	vals, err := float64s(t)
	if err != nil {
		return nil, err
	}
	shape := t.Shape().Clone()
	switch dt {
	case tensor.Float64:
		if len(shape) == 0 {
			return tensor.New(tensor.FromScalar(vals[0])), nil
		}
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(vals)), nil
	case tensor.Int:
		ints := make([]int, len(vals))
		for i, v := range vals {
			ints[i] = int(v)
		}
		if len(shape) == 0 {
			return tensor.New(tensor.FromScalar(ints[0])), nil
		}
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(ints)), nil
	}
	return nil, errors.Errorf("cannot cast %v to %v", t.Dtype(), dt)
}

func normAxis(axis, dims int) (int, error) {
	if axis < 0 {
		axis += dims
	}
	if axis < 0 || axis >= dims {
		return 0, errors.Wrapf(ErrShapeMismatch, "axis %d out of range for %d dimensions", axis, dims)
	}
	return axis, nil
}

// permute returns a contiguous copy of t with its axes reordered by perm.
func permute(t *tensor.Dense, perm []int) (*tensor.Dense, error) {
	c := t.Clone().(*tensor.Dense)
	if isIdentity(perm) {
		return c, nil
	}
	if err := c.T(perm...); err != nil {
		return nil, errors.Wrapf(err, "transpose %v by %v", t.Shape(), perm)
	}
	if err := c.Transpose(); err != nil {
		return nil, errors.Wrapf(err, "transpose %v by %v", t.Shape(), perm)
	}
	return c, nil
}

func isIdentity(perm []int) bool {
	for i, p := range perm {
		if i != p {
			return false
		}
	}
	return true
}

// swapLast exchanges axis with the last axis. Vectors and scalars have nothing to
// swap and are only copied.
func swapLast(t *tensor.Dense, axis int) (*tensor.Dense, error) {
	dims := t.Dims()
	if dims < 2 {
		return t.Clone().(*tensor.Dense), nil
	}
	ax, err := normAxis(axis, dims)
	if err != nil {
		return nil, err
	}
	perm := identity(dims)
	perm[ax], perm[dims-1] = perm[dims-1], perm[ax]
	return permute(t, perm)
}

// moveLast moves axis to the last position keeping the order of the others. The
// returned permutation undoes the move when inverted.
func moveLast(t *tensor.Dense, axis int) (*tensor.Dense, []int, error) {
	dims := t.Dims()
	ax, err := normAxis(axis, dims)
	if err != nil {
		return nil, nil, err
	}
	perm := make([]int, 0, dims)
	for i := 0; i < dims; i++ {
		if i != ax {
			perm = append(perm, i)
		}
	}
	perm = append(perm, ax)
	moved, err := permute(t, perm)
	if err != nil {
		return nil, nil, err
	}
	return moved, perm, nil
}

func identity(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

func invert(perm []int) []int {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return inv
}
