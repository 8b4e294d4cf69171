package losses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for i, name := range Types() {
		got, err := ParseType(name)
		require.NoError(t, err)
		assert.Equal(t, Type(i), got)
		assert.Equal(t, name, got.String())
	}
	got, err := ParseType("Focal")
	require.NoError(t, err)
	assert.Equal(t, TypeFocal, got)

	_, err = ParseType("hinge")
	assert.ErrorIs(t, err, ErrUnknownLoss)
	assert.Contains(t, err.Error(), "label_smoothing")
}

func TestNew(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeCrossEntropy, "FlattenedLoss of CrossEntropyLoss(ignore_index=-100, reduction=mean)"},
		{TypeFocal, "FlattenedLoss of FocalLoss(gamma=2, reduction=mean)"},
		{TypeBCEWithLogits, "FlattenedLoss of BCEWithLogitsLoss(reduction=mean)"},
		{TypeBCE, "FlattenedLoss of BCELoss(reduction=mean)"},
		{TypeMSE, "FlattenedLoss of MSELoss(reduction=mean)"},
		{TypeL1, "FlattenedLoss of L1Loss(reduction=mean)"},
		{TypeLabelSmoothing, "FlattenedLoss of LabelSmoothingCrossEntropy(eps=0.1, reduction=mean)"},
		{TypeDice, "DiceLoss(axis=1, smooth=1e-06, reduction=sum, square_in_union=false)"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			l, err := New(tt.typ, DefaultParams(tt.typ))
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.String())
		})
	}

	_, err := New(Type(42), Params{})
	assert.ErrorIs(t, err, ErrUnknownLoss)

	p := DefaultParams(TypeBCEWithLogits)
	p.PosWeight = []float64{2}
	p.Flatten = Bool(true)
	l, err := New(TypeBCEWithLogits, p)
	assert.ErrorIs(t, err, ErrFlattenWithClassWeights)
	assert.Nil(t, l)
}

func TestDefaultAxes(t *testing.T) {
	axes := map[string]int{
		"cross entropy":   DefaultCrossEntropyConfig().Axis,
		"focal":           DefaultFocalConfig().Axis,
		"bce logits":      DefaultBCEWithLogitsConfig().Axis,
		"bce":             DefaultBCEConfig().Axis,
		"regression":      DefaultRegressionConfig().Axis,
		"label smoothing": DefaultLabelSmoothingConfig().Axis,
	}
	for name, axis := range axes {
		if axis != -1 {
			t.Errorf("%s default axis = %d; want -1", name, axis)
		}
	}
	if got := DefaultDiceConfig().Axis; got != 1 {
		t.Errorf("dice default axis = %d; want 1", got)
	}
	for _, name := range Types() {
		typ, _ := ParseType(name)
		want := -1
		if typ == TypeDice {
			want = 1
		}
		if got := DefaultParams(typ).Axis; got != want {
			t.Errorf("DefaultParams(%s).Axis = %d; want %d", name, got, want)
		}
	}
}
