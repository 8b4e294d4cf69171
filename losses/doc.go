// Package losses implements loss functions for classification, regression and
// segmentation on top of gorgonia.org/tensor.
//
// Most losses are a Criterion (an elementary loss over a (batch, class) matrix or a
// flat vector) wrapped by Flattened, which moves the class axis last, coerces the
// target element type and flattens both tensors before delegating:
//
//	cfg := losses.DefaultCrossEntropyConfig()
//	cfg.Axis = 1
//	loss, err := losses.NewCrossEntropyLossFlat(cfg)
//	if err != nil {
//		return err
//	}
//	out, err := loss.Forward(logits, labels)
//
// DiceLoss works on unflattened segmentation maps directly.
//
// Every Loss also exposes Decode and Activation, which map raw model output to
// labels and to the distribution the loss implicitly models. They are used at
// inference time and never by Forward.
package losses
