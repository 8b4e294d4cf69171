package losses

import (
	"strings"

	"github.com/pkg/errors"
)

// Type enumerates the losses New can build.
type Type int

const (
	TypeCrossEntropy Type = iota
	TypeFocal
	TypeBCEWithLogits
	TypeBCE
	TypeMSE
	TypeL1
	TypeLabelSmoothing
	TypeDice
)

var typeNames = [...]string{
	TypeCrossEntropy:   "cross_entropy",
	TypeFocal:          "focal",
	TypeBCEWithLogits:  "bce_logits",
	TypeBCE:            "bce",
	TypeMSE:            "mse",
	TypeL1:             "l1",
	TypeLabelSmoothing: "label_smoothing",
	TypeDice:           "dice",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// Types returns the names of all losses.
func Types() []string {
	return append([]string(nil), typeNames[:]...)
}

// ParseType returns the Type with the given name.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if strings.EqualFold(name, n) {
			return Type(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownLoss, "%q, known losses are: \"%s\"", name, strings.Join(Types(), "\", \""))
}

// Params are the hyperparameters of every loss. Each loss reads the fields it
// knows and ignores the rest. The zero value is not a usable default: its Axis
// is the first axis and its Gamma, Eps and Thresh are 0. Start from DefaultParams.
type Params struct {
	Axis          int
	Flatten       *bool
	Reduction     Reduction
	Gamma         float64
	Eps           float64
	Smooth        float64
	Thresh        float64
	SquareInUnion bool
	IgnoreIndex   int
	Weight        []float64
	PosWeight     []float64
}

// DefaultParams returns the defaults of the loss t.
func DefaultParams(t Type) Params {
	p := Params{
		Axis:        -1,
		Reduction:   ReductionMean,
		Gamma:       DefaultFocalConfig().Gamma,
		Eps:         DefaultLabelSmoothingConfig().Eps,
		Smooth:      DefaultDiceConfig().Smooth,
		Thresh:      DefaultBCEWithLogitsConfig().Thresh,
		IgnoreIndex: DefaultIgnoreIndex,
	}
	if t == TypeDice {
		p.Axis = DefaultDiceConfig().Axis
		p.Reduction = DefaultDiceConfig().Reduction
	}
	return p
}

// New builds the loss t configured by p.
func New(t Type, p Params) (Loss, error) {
	var (
		flat *Flattened
		err  error
	)
	switch t {
	case TypeCrossEntropy:
		flat, err = NewCrossEntropyLossFlat(CrossEntropyConfig{
			Axis: p.Axis, Flatten: p.Flatten, Weight: p.Weight, IgnoreIndex: p.IgnoreIndex, Reduction: p.Reduction,
		})
	case TypeFocal:
		flat, err = NewFocalLossFlat(FocalConfig{
			Axis: p.Axis, Flatten: p.Flatten, Gamma: p.Gamma, Weight: p.Weight, Reduction: p.Reduction,
		})
	case TypeBCEWithLogits:
		flat, err = NewBCEWithLogitsLossFlat(BCEWithLogitsConfig{
			Axis: p.Axis, Flatten: p.Flatten, Floatify: true, Thresh: p.Thresh,
			Weight: p.Weight, PosWeight: p.PosWeight, Reduction: p.Reduction,
		})
	case TypeBCE:
		flat, err = NewBCELossFlat(BCEConfig{
			Axis: p.Axis, Flatten: p.Flatten, Floatify: true, Weight: p.Weight, Reduction: p.Reduction,
		})
	case TypeMSE:
		flat, err = NewMSELossFlat(RegressionConfig{Axis: p.Axis, Flatten: p.Flatten, Floatify: true, Reduction: p.Reduction})
	case TypeL1:
		flat, err = NewL1LossFlat(RegressionConfig{Axis: p.Axis, Flatten: p.Flatten, Floatify: true, Reduction: p.Reduction})
	case TypeLabelSmoothing:
		flat, err = NewLabelSmoothingCrossEntropyFlat(LabelSmoothingConfig{
			Axis: p.Axis, Flatten: p.Flatten, Eps: p.Eps, Weight: p.Weight, Reduction: p.Reduction,
		})
	case TypeDice:
		dice, err := NewDiceLoss(DiceConfig{
			Axis: p.Axis, Smooth: p.Smooth, Reduction: p.Reduction, SquareInUnion: p.SquareInUnion,
		})
		if err != nil {
			return nil, err
		}
		return dice, nil
	default:
		return nil, errors.Wrapf(ErrUnknownLoss, "type %d", int(t))
	}
	if err != nil {
		return nil, err
	}
	return flat, nil
}
