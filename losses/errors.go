package losses

import "github.com/pkg/errors"

var (
	// ErrFlattenWithClassWeights is returned when per-class weights are combined with
	// an explicitly enabled flatten.
	ErrFlattenWithClassWeights = errors.New("flatten must be false when using per-class weights")

	// ErrOneHotTarget is returned by DiceLoss when the target is already one-hot encoded.
	ErrOneHotTarget = errors.New("input and target dimensions differ, DiceLoss expects non one-hot targets")

	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrTargetOutOfRange = errors.New("target index out of range")
	ErrInputOutOfRange  = errors.New("input out of range")
	ErrUnknownReduction = errors.New("unknown reduction")
	ErrUnknownLoss      = errors.New("unknown loss")
	ErrNotScalar        = errors.New("tensor is not a scalar")
	ErrInvalidConfig    = errors.New("invalid configuration")
)
