// Package analytics derives comparison tables and chart series from
// two-crop comparison payloads. Everything here is a pure function of its
// inputs; nil or malformed inputs produce empty views rather than panics.
package analytics

// Direction states which way a metric improves
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

func (d Direction) String() string {
	if d == LowerIsBetter {
		return "lower-is-better"
	}
	return "higher-is-better"
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Label annotates one side of a metric comparison
type Label string

const (
	LabelNone   Label = ""
	LabelBetter Label = "better"
	LabelWorse  Label = "worse"
)

// Classify labels the pair (a, b) under direction d. Exact equality, or any
// comparison involving NaN, yields no label on either side.
func Classify(a, b float64, d Direction) (Label, Label) {
	aWins := a > b
	bWins := a < b
	if d == LowerIsBetter {
		aWins, bWins = bWins, aWins
	}
	switch {
	case aWins:
		return LabelBetter, LabelWorse
	case bWins:
		return LabelWorse, LabelBetter
	}
	return LabelNone, LabelNone
}
