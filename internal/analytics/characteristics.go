package analytics

import (
	"encoding/json"

	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/pkg/numfmt"
)

// MetricRow is one row of a side-by-side comparison table
type MetricRow struct {
	Key       string
	Title     string
	Direction Direction
	Kind      numfmt.Kind
	Values    [2]float64
	Labels    [2]Label
}

// MarshalJSON keeps non-finite values encodable.
func (r MetricRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key       string      `json:"key"`
		Title     string      `json:"title"`
		Direction Direction   `json:"direction"`
		Kind      numfmt.Kind `json:"kind"`
		Values    [2]any      `json:"values"`
		Labels    [2]Label    `json:"labels"`
	}{r.Key, r.Title, r.Direction, r.Kind, [2]any{domain.SafeFloat(r.Values[0]), domain.SafeFloat(r.Values[1])}, r.Labels})
}

// RatioRow is one comparative index (crop_1 / crop_2)
type RatioRow struct {
	Key   string
	Title string
	Value float64
}

// MarshalJSON keeps non-finite values encodable.
func (r RatioRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key   string `json:"key"`
		Title string `json:"title"`
		Value any    `json:"value"`
	}{r.Key, r.Title, domain.SafeFloat(r.Value)})
}

// CharacteristicsView is the characteristics-mode comparison view-model
type CharacteristicsView struct {
	Names  [2]string   `json:"names"`
	Rows   []MetricRow `json:"rows"`
	Ratios []RatioRow  `json:"ratios"`
}

// Empty reports whether there is nothing to render.
func (v *CharacteristicsView) Empty() bool { return v == nil || len(v.Rows) == 0 }

type characteristic struct {
	key       string
	title     string
	direction Direction
	kind      numfmt.Kind
	value     func(domain.CropMetrics) float64
}

var characteristics = []characteristic{
	{"cost_per_crop", "Cost per Crop ($)", LowerIsBetter, numfmt.KindMoney, func(c domain.CropMetrics) float64 { return c.CostPerCrop }},
	{"yield_per_crop", "Yield per Crop (kg)", HigherIsBetter, numfmt.KindDecimal, func(c domain.CropMetrics) float64 { return c.YieldPerCrop }},
	{"space_required", "Space Required (m²)", LowerIsBetter, numfmt.KindDecimal, func(c domain.CropMetrics) float64 { return c.SpaceRequired }},
	{"days_to_mature", "Days to Mature", LowerIsBetter, numfmt.KindInteger, func(c domain.CropMetrics) float64 { return float64(c.DaysToMature) }},
	{"water_needed", "Water Needed (L/day)", LowerIsBetter, numfmt.KindDecimal, func(c domain.CropMetrics) float64 { return c.WaterNeeded }},
	{"nutritional_index", "Nutritional Index", HigherIsBetter, numfmt.KindDecimal, func(c domain.CropMetrics) float64 { return c.NutritionalIndex }},
	{"efficiency", "Efficiency (g/L)", HigherIsBetter, numfmt.KindDecimal, func(c domain.CropMetrics) float64 { return c.Efficiency }},
}

// Characteristics builds the seven annotated metric rows and the seven ratio
// rows. Ratios are taken verbatim from the payload's comparative index.
func Characteristics(c *domain.CharacteristicsComparison) *CharacteristicsView {
	if c == nil {
		return &CharacteristicsView{}
	}
	v := &CharacteristicsView{
		Names: [2]string{c.Crop1.Name, c.Crop2.Name},
		Rows:  make([]MetricRow, 0, len(characteristics)),
	}
	for _, ch := range characteristics {
		a, b := ch.value(c.Crop1), ch.value(c.Crop2)
		la, lb := Classify(a, b, ch.direction)
		v.Rows = append(v.Rows, MetricRow{
			Key:       ch.key,
			Title:     ch.title,
			Direction: ch.direction,
			Kind:      ch.kind,
			Values:    [2]float64{a, b},
			Labels:    [2]Label{la, lb},
		})
	}
	v.Ratios = RatioRows(c.ComparativeIndex)
	return v
}

// RatioRows lists a ratio set in display order.
func RatioRows(r domain.RatioSet) []RatioRow {
	return []RatioRow{
		{"cost_ratio", "Cost Ratio", r.CostRatio},
		{"yield_ratio", "Yield Ratio", r.YieldRatio},
		{"space_required_ratio", "Space Ratio", r.SpaceRequiredRatio},
		{"harvest_ratio", "Harvest Time Ratio", r.HarvestRatio},
		{"water_ratio", "Water Ratio", r.WaterRatio},
		{"nutritional_ratio", "Nutritional Yield Ratio", r.NutritionalRatio},
		{"efficiency_ratio", "Efficiency Ratio", r.EfficiencyRatio},
	}
}

// Ratios computes crop1/crop2 for every characteristic. A zero denominator
// produces ±Inf or NaN, which renderers display as-is.
func Ratios(c1, c2 domain.CropMetrics) domain.RatioSet {
	return domain.RatioSet{
		CostRatio:          c1.CostPerCrop / c2.CostPerCrop,
		YieldRatio:         c1.YieldPerCrop / c2.YieldPerCrop,
		SpaceRequiredRatio: c1.SpaceRequired / c2.SpaceRequired,
		HarvestRatio:       float64(c1.DaysToMature) / float64(c2.DaysToMature),
		WaterRatio:         c1.WaterNeeded / c2.WaterNeeded,
		NutritionalRatio:   c1.NutritionalIndex / c2.NutritionalIndex,
		EfficiencyRatio:    c1.Efficiency / c2.Efficiency,
	}
}

// LocalCharacteristics assembles a characteristics comparison from catalog
// records without a round trip to the service.
func LocalCharacteristics(c1, c2 domain.Crop) *domain.CharacteristicsComparison {
	m1, m2 := c1.Metrics(), c2.Metrics()
	return &domain.CharacteristicsComparison{Crop1: m1, Crop2: m2, ComparativeIndex: Ratios(m1, m2)}
}
