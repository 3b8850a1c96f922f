package output

import (
	"github.com/cropsim/crop-dashboard/internal/analytics"
)

// dataTable is an unformatted table for machine-readable outputs. Cells are
// string, int or float64.
type dataTable struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// dataTables lists the raw tables of r, primary table first.
func dataTables(r *Report) ([]dataTable, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	switch r.Kind {
	case KindCatalog:
		t := dataTable{
			Name:    "Catalog",
			Headers: []string{"id", "name", "cost_per_crop", "yield_per_crop", "space_required", "days_to_mature", "water_needed", "nutritional_index", "efficiency"},
		}
		for _, c := range r.Catalog {
			t.Rows = append(t.Rows, []any{c.ID, c.Name, c.CostPerCrop, c.YieldPerCrop, c.SpaceRequired, c.DaysToMature, c.WaterNeeded, c.NutritionalIndex, c.Efficiency})
		}
		return []dataTable{t}, nil

	case KindSimulation:
		v := r.Simulation
		pts := dataTable{Name: "Series", Headers: []string{"year", string(v.Metric)}}
		for _, p := range v.Points {
			pts.Rows = append(pts.Rows, []any{p.Year, p.Value})
		}
		sum := dataTable{Name: "Summary", Headers: []string{"key", "title", "value"}}
		for _, s := range v.Summary {
			sum.Rows = append(sum.Rows, []any{s.Key, s.Title, s.Value})
		}
		return []dataTable{pts, sum}, nil

	case KindCharacteristics:
		v := r.Characteristics
		ratios := dataTable{Name: "Ratios", Headers: []string{"key", "title", "value"}}
		for _, rr := range v.Ratios {
			ratios.Rows = append(ratios.Rows, []any{rr.Key, rr.Title, rr.Value})
		}
		return []dataTable{metricData("Characteristics", v.Names, v.Rows), ratios}, nil

	case KindSimulateComparison:
		v := r.SimComparison
		chart := dataTable{Name: "Chart", Headers: []string{"year", v.Names[0], v.Names[1]}}
		for _, rec := range v.Chart {
			chart.Rows = append(chart.Rows, []any{rec.Year, rec.Values[0], rec.Values[1]})
		}
		out := []dataTable{chart, metricData("Summary", v.Names, v.Rows)}
		if cp := v.Crossover; cp != nil {
			out = append(out, dataTable{
				Name:    "Crossover",
				Headers: []string{"year_index", "elapsed_years", "fraction_of_year", "value", "leader_after"},
				Rows: [][]any{{
					cp.YearIndex,
					cp.Elapsed,
					cp.Fraction.InexactFloat64(),
					cp.Value.InexactFloat64(),
					v.Names[cp.LeaderAfter],
				}},
			})
		}
		return out, nil
	}
	return nil, ErrNothingToRender
}

func metricData(name string, names [2]string, rows []analytics.MetricRow) dataTable {
	t := dataTable{Name: name, Headers: []string{"key", "title", names[0], names[1], "label_1", "label_2", "direction"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Key, r.Title, r.Values[0], r.Values[1], string(r.Labels[0]), string(r.Labels[1]), r.Direction.String()})
	}
	return t
}
