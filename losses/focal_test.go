package losses

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFocalGammaZeroIsCrossEntropy(t *testing.T) {
	logits := []float64{0.5, -1, 2, 1.2, 0.3, -0.7, -2, 0.1, 0.4, 3, -3, 0}
	labels := []int{1, 0, 2, 0}

	ce, err := NewCrossEntropyLossFlat(DefaultCrossEntropyConfig())
	require.NoError(t, err)
	cfg := DefaultFocalConfig()
	cfg.Gamma = 0
	focal, err := NewFocalLossFlat(cfg)
	require.NoError(t, err)

	for _, r := range []Reduction{ReductionMean, ReductionSum, ReductionNone} {
		want, err := ce.Forward(FromFloat64s(logits, 4, 3), FromInts(labels), WithReduction(r))
		require.NoError(t, err)
		got, err := focal.Forward(FromFloat64s(logits, 4, 3), FromInts(labels), WithReduction(r))
		require.NoError(t, err)
		assert.InDeltaSlice(t, valuesOf(t, want), valuesOf(t, got), 1e-12, "reduction %s", r)
	}
}

func TestFocalForward(t *testing.T) {
	loss, err := NewFocalLossFlat(DefaultFocalConfig())
	require.NoError(t, err)
	out, err := loss.Forward(FromFloat64s([]float64{2, 1}, 1, 2), FromInts([]int{0}))
	require.NoError(t, err)

	ce := math.Log1p(math.Exp(-1))
	pt := math.Exp(-ce)
	assert.InDelta(t, (1-pt)*(1-pt)*ce, scalarOf(t, out), tol)
	assert.Less(t, scalarOf(t, out), ce, "easy examples are down-weighted")
}

func TestFocalInvalidGamma(t *testing.T) {
	cfg := DefaultFocalConfig()
	cfg.Gamma = -1
	_, err := NewFocalLossFlat(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFocalString(t *testing.T) {
	l, err := NewFocalLoss(2, nil, ReductionSum)
	require.NoError(t, err)
	assert.Equal(t, "FocalLoss(gamma=2, reduction=sum)", l.String())
}
