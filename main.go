// Command gonloss evaluates a loss on a batch read from a JSON file.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"gonloss/losses"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("gonloss: %v", err)
	}
}

func run(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("gonloss", flag.ContinueOnError)
	var (
		input         = fs.String("input", "", "JSON file with pred, target and optional weights")
		lossName      = fs.String("loss", "cross_entropy", "loss to evaluate, one of the registered names")
		reduction     = fs.String("reduction", "", "mean, sum or none (default depends on the loss)")
		axis          = fs.Int("axis", -1, "class axis")
		gamma         = fs.Float64("gamma", 2, "focal loss focusing parameter")
		eps           = fs.Float64("eps", 0.1, "label smoothing factor")
		smooth        = fs.Float64("smooth", 1e-6, "dice smoothing term")
		thresh        = fs.Float64("thresh", 0.5, "decode threshold of bce_logits")
		squareInUnion = fs.Bool("square-in-union", false, "square predictions in the dice union")
		noFlatten     = fs.Bool("no-flatten", false, "pass tensors to the criterion without flattening")
		grad          = fs.Bool("grad", false, "print the numerical gradient of the loss")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("-input is required")
	}

	typ, err := losses.ParseType(*lossName)
	if err != nil {
		return err
	}
	p := losses.DefaultParams(typ)
	var ferr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "reduction":
			r, err := losses.ParseReduction(*reduction)
			if err != nil && ferr == nil {
				ferr = err
			}
			p.Reduction = r
		case "axis":
			p.Axis = *axis
		case "gamma":
			p.Gamma = *gamma
		case "eps":
			p.Eps = *eps
		case "smooth":
			p.Smooth = *smooth
		case "thresh":
			p.Thresh = *thresh
		case "square-in-union":
			p.SquareInUnion = *squareInUnion
		case "no-flatten":
			p.Flatten = losses.Bool(!*noFlatten)
		}
	})
	if ferr != nil {
		return ferr
	}

	b, err := loadBatch(*input)
	if err != nil {
		return errors.Wrapf(err, "load %s", *input)
	}
	p.Weight, p.PosWeight = b.Weight, b.PosWeight

	l, err := losses.New(typ, p)
	if err != nil {
		return err
	}
	pred, targ := b.tensors()

	out, err := l.Forward(pred, targ)
	if err != nil {
		return errors.Wrap(err, l.String())
	}
	decoded, err := l.Decode(pred)
	if err != nil {
		return errors.Wrap(err, "decode")
	}
	fmt.Fprintln(w, l)
	fmt.Fprintf(w, "loss: %v\n", out.Data())
	fmt.Fprintf(w, "decoded: %v\n", decoded.Data())

	if *grad {
		g, err := losses.NumericalGradient(l, pred, targ)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "grad: %v\n", g.Data())
	}
	return nil
}
