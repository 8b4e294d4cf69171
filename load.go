package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// batch is one prediction/target pair read from a JSON file.
type batch struct {
	Pred        []float64 `json:"pred"`
	PredShape   []int     `json:"pred_shape"`
	Target      []float64 `json:"target"`
	TargetShape []int     `json:"target_shape"`
	TargetDtype string    `json:"target_dtype"`
	Weight      []float64 `json:"weight"`
	PosWeight   []float64 `json:"pos_weight"`
}

func loadBatch(filePath string) (*batch, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readBatch(file)
}

func readBatch(r io.Reader) (*batch, error) {
	var b batch
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return nil, errors.Wrap(err, "decode batch")
	}
	if len(b.Pred) == 0 {
		return nil, errors.New("batch has no predictions")
	}
	if len(b.PredShape) == 0 {
		b.PredShape = []int{len(b.Pred)}
	}
	if len(b.TargetShape) == 0 {
		b.TargetShape = []int{len(b.Target)}
	}
	if n := size(b.PredShape); n != len(b.Pred) {
		return nil, errors.Errorf("pred has %d values, shape %v needs %d", len(b.Pred), b.PredShape, n)
	}
	if n := size(b.TargetShape); n != len(b.Target) {
		return nil, errors.Errorf("target has %d values, shape %v needs %d", len(b.Target), b.TargetShape, n)
	}
	switch b.TargetDtype {
	case "", "int", "float":
	default:
		return nil, errors.Errorf("unknown target_dtype %q", b.TargetDtype)
	}
	return &b, nil
}

func (b *batch) tensors() (pred, targ *tensor.Dense) {
	pred = tensor.New(tensor.Of(tensor.Float64), tensor.WithShape(b.PredShape...), tensor.WithBacking(b.Pred))
	if b.TargetDtype == "float" {
		return pred, tensor.New(tensor.Of(tensor.Float64), tensor.WithShape(b.TargetShape...), tensor.WithBacking(b.Target))
	}
	labels := make([]int, len(b.Target))
	for i, v := range b.Target {
		labels[i] = int(v)
	}
	return pred, tensor.New(tensor.Of(tensor.Int), tensor.WithShape(b.TargetShape...), tensor.WithBacking(labels))
}

func size(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
