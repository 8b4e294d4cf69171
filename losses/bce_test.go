package losses

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestBCEWithLogitsForward(t *testing.T) {
	loss, err := NewBCEWithLogitsLossFlat(DefaultBCEWithLogitsConfig())
	require.NoError(t, err)

	out, err := loss.Forward(FromFloat64s([]float64{2, -1}, 1, 2), FromInts([]int{1, 0}, 1, 2))
	require.NoError(t, err)
	a := math.Log1p(math.Exp(-2))
	b := math.Log1p(math.Exp(-1))
	assert.InDelta(t, (a+b)/2, scalarOf(t, out), tol)

	big, err := loss.Forward(FromFloat64s([]float64{800, -800}), FromFloat64s([]float64{0, 1}))
	require.NoError(t, err)
	assert.InDelta(t, 800, scalarOf(t, big), tol, "large logits must not overflow")
}

func TestBCEWithLogitsPosWeight(t *testing.T) {
	cfg := DefaultBCEWithLogitsConfig()
	cfg.PosWeight = []float64{3, 1}
	loss, err := NewBCEWithLogitsLossFlat(cfg)
	require.NoError(t, err)
	assert.False(t, loss.Config().Flatten, "per-class weights turn flattening off")

	pred := FromFloat64s(make([]float64, 4), 2, 2)
	targ := FromFloat64s([]float64{1, 0, 1, 1}, 2, 2)
	out, err := loss.Forward(pred, targ, WithReduction(ReductionSum))
	require.NoError(t, err)
	assert.InDelta(t, 8*math.Ln2, scalarOf(t, out), tol)

	none, err := loss.Forward(pred, targ, WithReduction(ReductionNone))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, none.Shape())
}

func TestBCEWithLogitsWeightsNeedUnflattened(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(*BCEWithLogitsConfig)
	}{
		{"pos weight", func(c *BCEWithLogitsConfig) { c.PosWeight = []float64{1, 2} }},
		{"weight", func(c *BCEWithLogitsConfig) { c.Weight = []float64{1, 2} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBCEWithLogitsConfig()
			tt.cfg(&cfg)
			cfg.Flatten = Bool(true)
			loss, err := NewBCEWithLogitsLossFlat(cfg)
			assert.ErrorIs(t, err, ErrFlattenWithClassWeights)
			assert.Nil(t, loss)

			cfg.Flatten = Bool(false)
			_, err = NewBCEWithLogitsLossFlat(cfg)
			assert.NoError(t, err)
		})
	}
}

func TestBCEWithLogitsHooks(t *testing.T) {
	loss, err := NewBCEWithLogitsLossFlat(DefaultBCEWithLogitsConfig())
	require.NoError(t, err)
	x := FromFloat64s([]float64{-1, 0.2, 0.6, 3})

	dec, err := loss.Decode(x)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true, true}, dec.Data())

	act, err := loss.Activation(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.268941, 0.549834, 0.645656, 0.952574}, valuesOf(t, act), tol)
}

func TestBCEForward(t *testing.T) {
	loss, err := NewBCELossFlat(DefaultBCEConfig())
	require.NoError(t, err)

	out, err := loss.Forward(FromFloat64s([]float64{0.9, 0.2}), FromInts([]int{1, 0}))
	require.NoError(t, err)
	assert.InDelta(t, (-math.Log(0.9)-math.Log(0.8))/2, scalarOf(t, out), tol)

	clamped, err := loss.Forward(FromFloat64s([]float64{1}), FromFloat64s([]float64{0}))
	require.NoError(t, err)
	assert.InDelta(t, 100, scalarOf(t, clamped), tol)

	_, err = loss.Forward(FromFloat64s([]float64{1.5}), FromFloat64s([]float64{1}))
	assert.ErrorIs(t, err, ErrInputOutOfRange)

	_, err = loss.Forward(FromFloat64s([]float64{0.5, 0.5}), FromFloat64s([]float64{1}))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestBCEWeight(t *testing.T) {
	cfg := DefaultBCEConfig()
	cfg.Flatten = Bool(false)
	cfg.Weight = []float64{2, 0}
	loss, err := NewBCELossFlat(cfg)
	require.NoError(t, err)
	out, err := loss.Forward(FromFloat64s([]float64{0.5, 0.5}, 1, 2), FromFloat64s([]float64{1, 1}, 1, 2), WithReduction(ReductionSum))
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Ln2, scalarOf(t, out), tol)
}
