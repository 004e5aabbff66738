// Package dataset defines the shared value types exchanged between the split
// assigner, dataset builder, and per-item sampler.  No behaviour lives here,
// only plain data types and their validation.
package dataset

import "fmt"

// Split identifies one of the three dataset partitions.
type Split string

const (
	SplitTrain Split = "train"
	SplitDev   Split = "dev"
	SplitTest  Split = "test"
)

// Splits lists the partitions in canonical order.  The order matters: the
// identity split assigner cuts its shuffled key list into contiguous blocks
// following this order.
var Splits = [3]Split{SplitTrain, SplitDev, SplitTest}

// IsValid reports whether s is one of train/dev/test.
func (s Split) IsValid() bool {
	switch s {
	case SplitTrain, SplitDev, SplitTest:
		return true
	}
	return false
}

func (s Split) String() string { return string(s) }

// ParseSplit converts a string into a Split, rejecting anything outside the
// canonical three values.
func ParseSplit(s string) (Split, error) {
	sp := Split(s)
	if !sp.IsValid() {
		return "", fmt.Errorf("dataset: invalid split %q (want train/dev/test)", s)
	}
	return sp, nil
}

// Source identifies the corpus a sample originates from.
type Source string

const (
	// SourceEnzymatic marks samples from the enzyme-reaction corpus.
	SourceEnzymatic Source = "ec"
	// SourceOrganic marks samples folded in from an augmenting
	// organic-reaction corpus (no catalyzing enzyme).
	SourceOrganic Source = "organic"
)

// Proportions carries the target train/dev/test fractions for a split
// assignment.  The three values must sum to 1 within Epsilon.
type Proportions struct {
	Train float64 `mapstructure:"train" yaml:"train" json:"train"`
	Dev   float64 `mapstructure:"dev" yaml:"dev" json:"dev"`
	Test  float64 `mapstructure:"test" yaml:"test" json:"test"`
}

// Epsilon is the tolerance used when validating that proportions sum to 1.
const Epsilon = 1e-9

// Validate checks that each fraction is in [0, 1] and that they sum to 1.
func (p Proportions) Validate() error {
	for _, v := range []float64{p.Train, p.Dev, p.Test} {
		if v < 0 || v > 1 {
			return fmt.Errorf("dataset: split proportion %v out of [0,1]", v)
		}
	}
	sum := p.Train + p.Dev + p.Test
	if diff := sum - 1; diff > Epsilon || diff < -Epsilon {
		return fmt.Errorf("dataset: split proportions sum to %v, want 1", sum)
	}
	return nil
}

// Ordered returns the fractions in canonical split order.
func (p Proportions) Ordered() [3]float64 {
	return [3]float64{p.Train, p.Dev, p.Test}
}
