package losses

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Reduction selects how a per-example loss is aggregated.
type Reduction int

const (
	// ReductionMean averages all elements. It is the zero value.
	ReductionMean Reduction = iota
	// ReductionSum sums all elements.
	ReductionSum
	// ReductionNone returns the per-example loss unreduced.
	ReductionNone
)

var reductionNames = [...]string{
	ReductionMean: "mean",
	ReductionSum:  "sum",
	ReductionNone: "none",
}

func (r Reduction) String() string {
	if !r.valid() {
		return "Reduction(" + strconv.Itoa(int(r)) + ")"
	}
	return reductionNames[r]
}

func (r Reduction) valid() bool {
	return r >= ReductionMean && r <= ReductionNone
}

func (r Reduction) check() error {
	if !r.valid() {
		return errors.Wrapf(ErrUnknownReduction, "reduction %d", int(r))
	}
	return nil
}

// ParseReduction returns the Reduction named s ("mean", "sum" or "none").
func ParseReduction(s string) (Reduction, error) {
	for i, name := range reductionNames {
		if strings.EqualFold(s, name) {
			return Reduction(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownReduction, "%q, known reductions are %q", s, reductionNames[:])
}
