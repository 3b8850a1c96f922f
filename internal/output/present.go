package output

import (
	"fmt"
	"strconv"

	"github.com/cropsim/crop-dashboard/internal/analytics"
	"github.com/cropsim/crop-dashboard/pkg/numfmt"
)

// Cell is a rendered table value with its comparison annotation
type Cell struct {
	Text  string
	Label analytics.Label
}

// Table is a titled, fully formatted table ready for display
type Table struct {
	Title   string
	Headers []string
	Rows    [][]Cell
}

// Presentation is a report with every number already formatted for display.
type Presentation struct {
	Title  string
	Tables []Table
	Notes  []string
}

func plain(s string) Cell { return Cell{Text: s} }

// Present formats r for human consumption. Chart-like data (series points,
// accumulation records) uses the chart policy; summary tables use the
// summary policy.
func Present(r *Report) (*Presentation, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	chart, summary := r.numberFormats()
	p := &Presentation{Title: r.Title}

	switch r.Kind {
	case KindCatalog:
		t := Table{
			Title:   "Crops",
			Headers: []string{"ID", "Crop", "Cost per Crop", "Yield (kg)", "Space (m²)", "Days to Mature", "Water (L/day)", "Nutritional Index", "Efficiency (g/L)"},
		}
		for _, c := range r.Catalog {
			t.Rows = append(t.Rows, []Cell{
				plain(c.ID),
				plain(c.Name),
				plain(summary.Money(c.CostPerCrop)),
				plain(summary.Fixed(c.YieldPerCrop, 2)),
				plain(summary.Fixed(c.SpaceRequired, 2)),
				plain(summary.Integer(float64(c.DaysToMature))),
				plain(summary.Fixed(c.WaterNeeded, 2)),
				plain(summary.Fixed(c.NutritionalIndex, 2)),
				plain(summary.Fixed(c.Efficiency, 2)),
			})
		}
		p.Tables = append(p.Tables, t)

	case KindSimulation:
		v := r.Simulation
		label := v.Label
		if label == "" {
			label = "Value"
		}
		t := Table{Title: label, Headers: []string{"Year", label}}
		for _, pt := range v.Points {
			t.Rows = append(t.Rows, []Cell{plain(strconv.Itoa(pt.Year)), plain(chart.Compact(pt.Value))})
		}
		p.Tables = append(p.Tables, t)
		if len(v.Summary) > 0 {
			s := Table{Title: "Summary", Headers: []string{"Metric", "Value"}}
			for _, row := range v.Summary {
				s.Rows = append(s.Rows, []Cell{plain(row.Title), plain(summary.Render(row.Kind, row.Value))})
			}
			p.Tables = append(p.Tables, s)
		}

	case KindCharacteristics:
		v := r.Characteristics
		p.Tables = append(p.Tables, metricTable("Characteristics", v.Names, v.Rows, summary))
		p.Notes = append(p.Notes, recommendationNote(AnalyzeComparison(v.Names, v.Rows)))
		ratios := Table{Title: "Comparative Index", Headers: []string{"Index", "Value"}}
		for _, rr := range v.Ratios {
			ratios.Rows = append(ratios.Rows, []Cell{plain(rr.Title), plain(summary.Fixed(rr.Value, 2))})
		}
		p.Tables = append(p.Tables, ratios)

	case KindSimulateComparison:
		v := r.SimComparison
		t := Table{Title: v.AxisLabel, Headers: []string{"Year", v.Names[0], v.Names[1]}}
		for _, rec := range v.Chart {
			t.Rows = append(t.Rows, []Cell{
				plain(strconv.Itoa(rec.Year)),
				plain(chart.Compact(rec.Values[0])),
				plain(chart.Compact(rec.Values[1])),
			})
		}
		p.Tables = append(p.Tables, t)
		p.Tables = append(p.Tables, metricTable("Summary", v.Names, v.Rows, summary))
		if len(v.Rows) > 0 {
			p.Notes = append(p.Notes, recommendationNote(AnalyzeComparison(v.Names, v.Rows)))
		}
		if v.Crossover != nil {
			p.Notes = append(p.Notes, crossoverNote(v, chart))
		} else if len(v.Chart) == 0 {
			p.Notes = append(p.Notes, "No chart data: the accumulation series are empty or have different lengths.")
		}
	}
	return p, nil
}

func metricTable(title string, names [2]string, rows []analytics.MetricRow, f *numfmt.Formatter) Table {
	t := Table{Title: title, Headers: []string{"Metric", names[0], names[1]}}
	for _, row := range rows {
		t.Rows = append(t.Rows, []Cell{
			plain(row.Title),
			{Text: f.Render(row.Kind, row.Values[0]), Label: row.Labels[0]},
			{Text: f.Render(row.Kind, row.Values[1]), Label: row.Labels[1]},
		})
	}
	return t
}

func recommendationNote(rec Recommendation) string {
	if rec.CropName == "" {
		return fmt.Sprintf("Neither crop leads: %d metrics each out of %d.", rec.Wins[0], rec.Metrics)
	}
	return fmt.Sprintf("%s is better on %d of %d metrics.", rec.CropName, max(rec.Wins[0], rec.Wins[1]), rec.Metrics)
}

func crossoverNote(v *analytics.SimulationComparisonView, chart *numfmt.Formatter) string {
	cp := v.Crossover
	leader := v.Names[cp.LeaderAfter]
	return fmt.Sprintf("%s takes the lead after %s years (%s at the crossover, year %d).",
		leader,
		chart.Fixed(cp.Elapsed, 2),
		chart.Compact(cp.Value.InexactFloat64()),
		cp.YearIndex)
}
