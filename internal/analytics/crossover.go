package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// CrossoverPoint describes where two cumulative series meet
type CrossoverPoint struct {
	// Year index (1-based) of the first year-end at or after the crossover
	YearIndex int `json:"year_index"`

	// Elapsed years (fractional) at the crossover, e.g. 2.25
	Elapsed float64 `json:"elapsed_years"`

	// Fraction (0..1] of year YearIndex at which the crossover happens
	Fraction decimal.Decimal `json:"fraction_of_year"`

	// Cumulative value at the crossover (equal for both series)
	Value decimal.Decimal `json:"value"`

	// Which series (0 or 1) is ahead once the crossover is passed
	LeaderAfter int `json:"leader_after"`
}

var crossoverTolerance = decimal.NewFromFloat(0.01)

// Crossover finds the first point at which cumulative series a and b cross,
// interpolating linearly within the year. Series must be aligned by year and
// of equal length. It returns nil when the series never cross, when they
// differ in length, or when any value is not finite.
func Crossover(a, b []float64) *CrossoverPoint {
	if len(a) == 0 || len(a) != len(b) {
		return nil
	}
	for i := range a {
		if !finite(a[i]) || !finite(b[i]) {
			return nil
		}
	}

	diffs := make([]decimal.Decimal, len(a))
	for i := range a {
		diffs[i] = decimal.NewFromFloat(a[i]).Sub(decimal.NewFromFloat(b[i]))
	}
	touching := func(d decimal.Decimal) bool { return d.Abs().LessThan(crossoverTolerance) }

	prevDiff := diffs[0]
	for i := 1; i < len(a); i++ {
		prevA := decimal.NewFromFloat(a[i-1])
		currA := decimal.NewFromFloat(a[i])
		currDiff := diffs[i]
		apart := !touching(prevDiff)

		// Equal at a year end after having been apart. It is a crossover only
		// if the next year apart has the opposite sign, or the series never
		// separate again.
		if apart && touching(currDiff) {
			j := i + 1
			for j < len(a) && touching(diffs[j]) {
				j++
			}
			if j < len(a) && diffs[j].Sign() == prevDiff.Sign() {
				prevDiff = diffs[j]
				i = j
				continue
			}
			leader := 0
			if prevDiff.IsPositive() {
				leader = 1
			}
			return &CrossoverPoint{
				YearIndex:   i + 1,
				Elapsed:     float64(i + 1),
				Fraction:    decimal.NewFromInt(1),
				Value:       currA,
				LeaderAfter: leader,
			}
		}

		if apart && prevDiff.Mul(currDiff).IsNegative() {
			// diff(t) = prevDiff + t*(currDiff - prevDiff); solve diff(t) = 0
			t := prevDiff.Neg().Div(currDiff.Sub(prevDiff))
			if t.LessThan(decimal.Zero) {
				t = decimal.Zero
			} else if t.GreaterThan(decimal.NewFromInt(1)) {
				t = decimal.NewFromInt(1)
			}
			value := prevA.Add(currA.Sub(prevA).Mul(t))
			leader := 0
			if currDiff.IsNegative() {
				leader = 1
			}
			return &CrossoverPoint{
				YearIndex:   i + 1,
				Elapsed:     float64(i) + t.InexactFloat64(),
				Fraction:    t,
				Value:       value,
				LeaderAfter: leader,
			}
		}
		prevDiff = currDiff
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
