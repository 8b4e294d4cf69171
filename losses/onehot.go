package losses

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// OneHot returns one binary mask per class stacked along axis, so the result has
// one more dimension than labels. Labels outside [0, classes) get no mask.
func OneHot(labels tensor.Tensor, classes, axis int) (*tensor.Dense, error) {
	d, err := asDense(labels)
	if err != nil {
		return nil, err
	}
	if classes <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "%d classes", classes)
	}
	idx, err := integers(d)
	if err != nil {
		return nil, err
	}
	shape := d.Shape()
	ax, err := normAxis(axis, len(shape)+1)
	if err != nil {
		return nil, err
	}
	outer, inner := 1, 1
	for i, s := range shape {
		if i < ax {
			outer *= s
		} else {
			inner *= s
		}
	}
	out := make([]int, outer*classes*inner)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			label := idx[o*inner+i]
			if label < 0 || label >= classes {
				continue
			}
			out[(o*classes+label)*inner+i] = 1
		}
	}
	dims := make([]int, 0, len(shape)+1)
	dims = append(dims, shape[:ax]...)
	dims = append(dims, classes)
	dims = append(dims, shape[ax:]...)
	return tensor.New(tensor.WithShape(dims...), tensor.WithBacking(out)), nil
}
