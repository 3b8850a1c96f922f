package output

import (
	"math"

	"github.com/cropsim/crop-dashboard/internal/analytics"
	"github.com/cropsim/crop-dashboard/internal/domain"
)

// labelSuffix is appended to annotated cells in text outputs.
func labelSuffix(l analytics.Label) string {
	if l == analytics.LabelNone {
		return ""
	}
	return " (" + string(l) + ")"
}

// safeCell converts a value for outputs that cannot hold non-finite numbers.
func safeCell(v float64) any { return domain.SafeFloat(v) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
