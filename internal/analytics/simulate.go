package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/pkg/numfmt"
)

// ChartType selects which accumulation series is charted in simulate mode
type ChartType string

const (
	ChartYield ChartType = "yield"
	ChartCost  ChartType = "cost"
)

// ParseChartType resolves a chart type name.
func ParseChartType(s string) (ChartType, error) {
	switch ChartType(strings.ToLower(strings.TrimSpace(s))) {
	case ChartYield:
		return ChartYield, nil
	case ChartCost:
		return ChartCost, nil
	}
	return "", &domain.ValidationError{Field: "chart", Message: fmt.Sprintf("unknown chart type %q (want yield or cost)", s)}
}

// AxisLabel returns the y-axis label for the chart type.
func (t ChartType) AxisLabel() string {
	if t == ChartCost {
		return "Cumulative Cost ($)"
	}
	return "Cumulative Yield (kg)"
}

// ChartRecord is one year of a two-crop chart. It encodes to JSON as
// {"year": n, "<crop 1 name>": v1, "<crop 2 name>": v2}, see Keys.
type ChartRecord struct {
	Year   int
	Names  [2]string
	Values [2]float64
}

// Keys returns the JSON object keys for the two crops. A name equal to
// "year" or to the other crop's name gets a " (2)", " (3)"... suffix.
func (r ChartRecord) Keys() [2]string {
	taken := map[string]bool{"year": true}
	var keys [2]string
	for i, name := range r.Names {
		key := name
		for n := 2; taken[key]; n++ {
			key = fmt.Sprintf("%s (%d)", name, n)
		}
		taken[key] = true
		keys[i] = key
	}
	return keys
}

// MarshalJSON emits the crop-name-keyed record shape.
func (r ChartRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"year":`)
	fmt.Fprintf(&buf, "%d", r.Year)
	keys := r.Keys()
	for i := range keys {
		key, err := json.Marshal(keys[i])
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(domain.SafeFloat(r.Values[i]))
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func accumulation(t domain.CropTrajectory, ct ChartType) []float64 {
	if ct == ChartCost {
		return t.AccumCost
	}
	return t.AccumYield
}

// ChartSeries builds one record per year index for the selected accumulation
// series. The series are required to have equal length; on mismatch, on an
// unknown chart type or a nil comparison the result is empty.
func ChartSeries(c *domain.SimulationComparison, ct ChartType) []ChartRecord {
	if c == nil || (ct != ChartYield && ct != ChartCost) {
		return []ChartRecord{}
	}
	a, b := accumulation(c.Crop1, ct), accumulation(c.Crop2, ct)
	if len(a) != len(b) {
		return []ChartRecord{}
	}
	names := [2]string{c.Crop1.Name, c.Crop2.Name}
	out := make([]ChartRecord, len(a))
	for i := range a {
		out[i] = ChartRecord{Year: i + 1, Names: names, Values: [2]float64{a[i], b[i]}}
	}
	return out
}

type summaryMetric struct {
	key       string
	title     string
	direction Direction
	kind      numfmt.Kind
	value     func(domain.CropTrajectory) float64
}

var summaryMetrics = []summaryMetric{
	{"total_yield", "Total Yield (kg)", HigherIsBetter, numfmt.KindCompact, func(t domain.CropTrajectory) float64 { return t.TotalYield }},
	{"total_cost", "Total Cost ($)", LowerIsBetter, numfmt.KindCurrency, func(t domain.CropTrajectory) float64 { return t.TotalCost }},
	{"average_efficiency", "Average Efficiency (g/L)", HigherIsBetter, numfmt.KindDecimal, func(t domain.CropTrajectory) float64 { return t.AverageEfficiency }},
	{"average_yield", "Average Yield per Year (kg)", HigherIsBetter, numfmt.KindCompact, func(t domain.CropTrajectory) float64 { return t.AverageYield }},
	{"value_per_litre", "Nutritional Yield / Litre", HigherIsBetter, numfmt.KindCompact, func(t domain.CropTrajectory) float64 { return t.ValuePerLitre }},
	{"value_per_area", "Nutritional Yield / m²", HigherIsBetter, numfmt.KindCompact, func(t domain.CropTrajectory) float64 { return t.ValuePerArea }},
}

// SummaryTable annotates the six summary metrics of a simulate-mode comparison.
func SummaryTable(c *domain.SimulationComparison) []MetricRow {
	if c == nil {
		return nil
	}
	rows := make([]MetricRow, 0, len(summaryMetrics))
	for _, m := range summaryMetrics {
		a, b := m.value(c.Crop1), m.value(c.Crop2)
		la, lb := Classify(a, b, m.direction)
		rows = append(rows, MetricRow{
			Key:       m.key,
			Title:     m.title,
			Direction: m.direction,
			Kind:      m.kind,
			Values:    [2]float64{a, b},
			Labels:    [2]Label{la, lb},
		})
	}
	return rows
}

// SimulationComparisonView is the simulate-mode comparison view-model
type SimulationComparisonView struct {
	Names     [2]string       `json:"names"`
	ChartType ChartType       `json:"chart_type"`
	AxisLabel string          `json:"axis_label"`
	Chart     []ChartRecord   `json:"chart"`
	Rows      []MetricRow     `json:"rows"`
	Crossover *CrossoverPoint `json:"crossover,omitempty"`
}

// Empty reports whether there is nothing to render.
func (v *SimulationComparisonView) Empty() bool {
	return v == nil || (len(v.Chart) == 0 && len(v.Rows) == 0)
}

// Simulation builds the chart, the annotated summary table and the crossover
// point of the charted accumulation series.
func Simulation(c *domain.SimulationComparison, ct ChartType) *SimulationComparisonView {
	if c == nil {
		return &SimulationComparisonView{ChartType: ct, AxisLabel: ct.AxisLabel(), Chart: []ChartRecord{}}
	}
	v := &SimulationComparisonView{
		Names:     [2]string{c.Crop1.Name, c.Crop2.Name},
		ChartType: ct,
		AxisLabel: ct.AxisLabel(),
		Chart:     ChartSeries(c, ct),
		Rows:      SummaryTable(c),
	}
	if len(v.Chart) > 0 {
		a, b := accumulation(c.Crop1, ct), accumulation(c.Crop2, ct)
		v.Crossover = Crossover(a, b)
	}
	return v
}
