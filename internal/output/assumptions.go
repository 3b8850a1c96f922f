package output

// DefaultAssumptions lists how comparison figures should be read. Rendered
// in the detailed outputs.
var DefaultAssumptions = []string{
	"Lower is better for cost, space required, days to mature, water needed and total cost.",
	"Higher is better for yield, nutritional index, efficiency and the nutritional value figures.",
	"Equal values are not marked as better or worse.",
	"Comparative index values are crop 1 divided by crop 2.",
	"Efficiency is grams of yield per litre of water per day to maturity.",
}

// Assumptions returns the reading notes relevant to r.
func Assumptions(r *Report) []string {
	switch r.Kind {
	case KindCharacteristics, KindSimulateComparison:
		return DefaultAssumptions
	case KindCatalog:
		return DefaultAssumptions[len(DefaultAssumptions)-1:]
	}
	return nil
}
