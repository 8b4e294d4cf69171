package losses

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// AdapterConfig configures how Flattened normalizes its inputs.
type AdapterConfig struct {
	// Axis is the class axis, negative values count from the end.
	Axis int
	// Flatten reshapes the input and target before calling the criterion.
	Flatten bool
	// Floatify converts the target to float64 unless it already is a float.
	Floatify bool
	// Is2D keeps the class axis when flattening the input. Otherwise the input
	// is flattened to a vector like the target.
	Is2D bool
}

// DefaultAdapterConfig flattens to (batch, class) with the class axis last.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{Axis: -1, Flatten: true, Is2D: true}
}

// Flattened is a Criterion applied to inputs whose class axis is moved last and
// whose leading axes are collapsed.
type Flattened struct {
	crit  Criterion
	cfg   AdapterConfig
	hooks Hooks
}

var _ Loss = (*Flattened)(nil)

func NewFlattened(crit Criterion, cfg AdapterConfig, hooks Hooks) *Flattened {
	return &Flattened{crit: crit, cfg: cfg, hooks: hooks}
}

// Criterion returns the wrapped criterion.
func (f *Flattened) Criterion() Criterion {
	return f.crit
}

func (f *Flattened) Config() AdapterConfig {
	return f.cfg
}

func (f *Flattened) String() string {
	return "FlattenedLoss of " + f.crit.String()
}

func (f *Flattened) Reduction() Reduction {
	return f.crit.Reduction()
}

// SetReduction sets the reduction of the wrapped criterion.
func (f *Flattened) SetReduction(r Reduction) {
	f.crit.SetReduction(r)
}

// Forward normalizes pred and targ and returns the criterion's loss on them.
// Tensors that are not *tensor.Dense are passed through untouched.
func (f *Flattened) Forward(pred, targ tensor.Tensor, opts ...CallOption) (*tensor.Dense, error) {
	inp, err := f.contiguous(pred)
	if err != nil {
		return nil, errors.Wrap(err, "input")
	}
	tg, err := f.contiguous(targ)
	if err != nil {
		return nil, errors.Wrap(err, "target")
	}
	if d, ok := tg.(*tensor.Dense); ok {
		if tg, err = f.coerce(d); err != nil {
			return nil, errors.Wrap(err, "target")
		}
	}
	if f.cfg.Flatten {
		if inp, err = f.flattenInput(inp); err != nil {
			return nil, errors.Wrap(err, "input")
		}
		if tg, err = flattenAll(tg); err != nil {
			return nil, errors.Wrap(err, "target")
		}
	}
	return f.crit.Forward(inp, tg, opts...)
}

func (f *Flattened) Decode(out tensor.Tensor) (*tensor.Dense, error) {
	if f.hooks.Decode == nil {
		return Identity(out)
	}
	return f.hooks.Decode(out)
}

func (f *Flattened) Activation(out tensor.Tensor) (*tensor.Dense, error) {
	if f.hooks.Activation == nil {
		return Identity(out)
	}
	return f.hooks.Activation(out)
}

// contiguous swaps the class axis with the last one and returns a contiguous copy.
func (f *Flattened) contiguous(t tensor.Tensor) (tensor.Tensor, error) {
	d, ok := t.(*tensor.Dense)
	if !ok {
		return t, nil
	}
	if err := nonEmpty(d); err != nil {
		return nil, err
	}
	return swapLast(d, f.cfg.Axis)
}

func (f *Flattened) coerce(t *tensor.Dense) (*tensor.Dense, error) {
	var err error
	if f.cfg.Floatify && !isFloat(t.Dtype()) {
		if t, err = cast(t, tensor.Float64); err != nil {
			return nil, err
		}
	}
	if isNarrowInt(t.Dtype()) {
		return cast(t, tensor.Int)
	}
	return t, nil
}

func (f *Flattened) flattenInput(t tensor.Tensor) (tensor.Tensor, error) {
	d, ok := t.(*tensor.Dense)
	if !ok {
		return t, nil
	}
	if !f.cfg.Is2D {
		return flattenAll(d)
	}
	if d.Dims() == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "cannot flatten a scalar to (batch, class)")
	}
	shape := d.Shape()
	c := shape[len(shape)-1]
	if c == 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "no classes in %v", shape)
	}
	if err := d.Reshape(d.Size()/c, c); err != nil {
		return nil, errors.Wrapf(err, "reshape %v", shape)
	}
	return d, nil
}

func flattenAll(t tensor.Tensor) (tensor.Tensor, error) {
	d, ok := t.(*tensor.Dense)
	if !ok || d.Dims() == 1 {
		return t, nil
	}
	if d.Dims() == 0 {
		v := tensor.New(tensor.Of(d.Dtype()), tensor.WithShape(1))
		if err := v.SetAt(d.ScalarValue(), 0); err != nil {
			return nil, errors.Wrap(err, "flatten scalar")
		}
		return v, nil
	}
	if err := d.Reshape(d.Size()); err != nil {
		return nil, errors.Wrapf(err, "reshape %v", d.Shape())
	}
	return d, nil
}

// Bool returns a pointer to v, for the optional Flatten fields of loss configs.
func Bool(v bool) *bool {
	return &v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func classHooks(axis int) Hooks {
	return Hooks{Decode: ArgMax(axis), Activation: Softmax(axis)}
}
