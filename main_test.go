package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func writeBatch(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadBatch(t *testing.T) {
	b, err := readBatch(strings.NewReader(`{"pred": [1, 2, 3, 4], "pred_shape": [2, 2], "target": [1, 0]}`))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, b.TargetShape)

	pred, targ := b.tensors()
	assert.Equal(t, tensor.Shape{2, 2}, pred.Shape())
	assert.Equal(t, tensor.Int, targ.Dtype())
	assert.Equal(t, []int{1, 0}, targ.Data())

	b.TargetDtype = "float"
	_, targ = b.tensors()
	assert.Equal(t, tensor.Float64, targ.Dtype())

	for _, body := range []string{
		`{"pred": []}`,
		`{"pred": [1, 2, 3], "pred_shape": [2, 2], "target": [1]}`,
		`{"pred": [1, 2], "target": [1], "target_shape": [3]}`,
		`{"pred": [1], "target": [1], "target_dtype": "bool"}`,
		`{"pred": [1], "target": [1], "labels": [1]}`,
	} {
		_, err := readBatch(strings.NewReader(body))
		assert.Error(t, err, body)
	}
}

func TestRun(t *testing.T) {
	path := writeBatch(t, `{"pred": [0, 0, 0, 0, 0, 0], "pred_shape": [2, 3], "target": [0, 2]}`)
	var out bytes.Buffer
	require.NoError(t, run([]string{"-input", path, "-loss", "cross_entropy"}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "FlattenedLoss of CrossEntropyLoss(ignore_index=-100, reduction=mean)", lines[0])
	assert.Contains(t, lines[1], "1.0986")
	assert.Equal(t, "decoded: [0 0]", lines[2])

	out.Reset()
	require.NoError(t, run([]string{"-input", path, "-reduction", "none", "-loss", "focal", "-gamma", "0"}, &out))
	assert.Contains(t, out.String(), "reduction=none")
	assert.Contains(t, out.String(), "gamma=0")
}

func TestRunGradient(t *testing.T) {
	path := writeBatch(t, `{"pred": [1, 2], "target": [0, 0], "target_dtype": "float"}`)
	var out bytes.Buffer
	require.NoError(t, run([]string{"-input", path, "-loss", "mse", "-grad"}, &out))
	assert.Contains(t, out.String(), "loss: 2.5")
	assert.Contains(t, out.String(), "grad: [")
	assert.False(t, strings.Contains(out.String(), "NaN"))
}

func TestRunErrors(t *testing.T) {
	path := writeBatch(t, `{"pred": [0.5, 0.5], "target": [1, 0], "pos_weight": [2]}`)
	tests := []struct {
		name string
		args []string
	}{
		{"no input", nil},
		{"unknown loss", []string{"-input", path, "-loss", "hinge"}},
		{"unknown reduction", []string{"-input", path, "-reduction", "max"}},
		{"missing file", []string{"-input", filepath.Join(t.TempDir(), "none.json")}},
		{"flatten with pos weight", []string{"-input", path, "-loss", "bce_logits", "-no-flatten=false"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(tt.args, &bytes.Buffer{}))
		})
	}
}
