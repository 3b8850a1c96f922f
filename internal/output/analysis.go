package output

import (
	"github.com/cropsim/crop-dashboard/internal/analytics"
)

// Recommendation summarises which crop wins more annotated metrics.
type Recommendation struct {
	CropName string // "" when the crops tie
	Wins     [2]int
	Metrics  int
}

// AnalyzeComparison counts "better" labels per crop across rows.
func AnalyzeComparison(names [2]string, rows []analytics.MetricRow) Recommendation {
	rec := Recommendation{Metrics: len(rows)}
	for _, r := range rows {
		for side := 0; side < 2; side++ {
			if r.Labels[side] == analytics.LabelBetter {
				rec.Wins[side]++
			}
		}
	}
	switch {
	case rec.Wins[0] > rec.Wins[1]:
		rec.CropName = names[0]
	case rec.Wins[1] > rec.Wins[0]:
		rec.CropName = names[1]
	}
	return rec
}
