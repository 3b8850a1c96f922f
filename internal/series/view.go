package series

import (
	"encoding/json"
	"slices"

	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/pkg/numfmt"
)

// SummaryRow is one line of the simulation summary table
type SummaryRow struct {
	Key   string      `json:"key"`
	Title string      `json:"title"`
	Value float64     `json:"value"`
	Kind  numfmt.Kind `json:"kind"`
}

// MarshalJSON keeps non-finite values encodable.
func (r SummaryRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key   string      `json:"key"`
		Title string      `json:"title"`
		Value any         `json:"value"`
		Kind  numfmt.Kind `json:"kind"`
	}{r.Key, r.Title, domain.SafeFloat(r.Value), r.Kind})
}

// View is the chart-and-table view-model for one simulation
type View struct {
	CropName string       `json:"crop_name"`
	Metric   Metric       `json:"metric"`
	Label    string       `json:"label"`
	Points   []Point      `json:"points"`
	Summary  []SummaryRow `json:"summary"`
}

// Build materializes the chart series for m and the summary passthrough.
// A nil result produces an empty view.
func Build(result *domain.SimulationResult, m Metric) *View {
	v := &View{
		CropName: result.CropName(),
		Metric:   m,
		Label:    LabelFor(m),
		Points:   slices.Collect(Points(result, m)),
	}
	if v.Points == nil {
		v.Points = []Point{}
	}
	if result != nil {
		v.Summary = SummaryRows(result.Summary)
	}
	return v
}

// SummaryRows returns the summary statistics in display order.
func SummaryRows(s domain.SummaryStats) []SummaryRow {
	return []SummaryRow{
		{Key: "sum_of_yield", Title: "Total Yield (kg)", Value: s.SumOfYield, Kind: numfmt.KindCompact},
		{Key: "sum_of_cost", Title: "Total Cost", Value: s.SumOfCost, Kind: numfmt.KindCurrency},
		{Key: "average_efficiency", Title: "Average Efficiency (g/L)", Value: s.AverageEfficiency, Kind: numfmt.KindDecimal},
		{Key: "yield_per_year_avg", Title: "Average Yield per Year (kg)", Value: s.YieldPerYearAvg, Kind: numfmt.KindCompact},
		{Key: "value_per_litre", Title: "Nutritional Yield / Litre", Value: s.ValuePerLitre, Kind: numfmt.KindCompact},
		{Key: "value_per_area", Title: "Nutritional Yield / m²", Value: s.ValuePerArea, Kind: numfmt.KindCompact},
	}
}
