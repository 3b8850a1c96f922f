// Package series turns a single-crop simulation payload into chart-ready
// (year, value) series and summary rows.
package series

import (
	"fmt"
	"iter"
	"strings"

	"github.com/cropsim/crop-dashboard/internal/domain"
)

// Metric selects which annual field is charted
type Metric string

const (
	MetricYield      Metric = "yield"
	MetricCost       Metric = "cost"
	MetricEfficiency Metric = "efficiency"
)

// Metrics lists the selectable metrics in display order.
var Metrics = []Metric{MetricYield, MetricCost, MetricEfficiency}

// ParseMetric resolves a metric name.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Metrics {
		if m == known {
			return m, nil
		}
	}
	return "", &domain.ValidationError{Field: "metric", Message: fmt.Sprintf("unknown metric %q (want yield, cost or efficiency)", s)}
}

// Point is one charted year
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// LabelFor returns the axis/legend label for a metric, or "" if unknown.
func LabelFor(m Metric) string {
	switch m {
	case MetricYield:
		return "Annual Yield (kg)"
	case MetricCost:
		return "Annual Cost ($)"
	case MetricEfficiency:
		return "Annual Efficiency"
	}
	return ""
}

func selector(m Metric) func(domain.YearRecord) float64 {
	switch m {
	case MetricYield:
		return func(y domain.YearRecord) float64 { return y.AnnualYield }
	case MetricCost:
		return func(y domain.YearRecord) float64 { return y.AnnualCost }
	case MetricEfficiency:
		return func(y domain.YearRecord) float64 { return y.AnnualEfficiency }
	}
	return nil
}

// Points yields one point per simulated year. The sequence is empty when
// result is nil or m is unknown, and may be ranged over any number of times.
func Points(result *domain.SimulationResult, m Metric) iter.Seq[Point] {
	pick := selector(m)
	return func(yield func(Point) bool) {
		if result == nil || pick == nil {
			return
		}
		for _, y := range result.AnnualData {
			if !yield(Point{Year: y.Year, Value: pick(y)}) {
				return
			}
		}
	}
}
