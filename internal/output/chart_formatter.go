package output

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"github.com/cropsim/crop-dashboard/pkg/numfmt"
)

// ChartFormatter renders the report's chart as an image. Type is "png" or "svg".
type ChartFormatter struct {
	Type   string
	Width  vg.Length
	Height vg.Length
}

func (c ChartFormatter) Name() string { return c.Type }

func (c ChartFormatter) Format(report *Report) ([]byte, error) {
	p, err := BuildPlot(report)
	if err != nil {
		return nil, err
	}
	w, h := c.Width, c.Height
	if w == 0 {
		w = 8 * vg.Inch
	}
	if h == 0 {
		h = 5 * vg.Inch
	}
	wt, err := p.WriterTo(w, h, c.Type)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", c.Type, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart %s: %w", c.Type, err)
	}
	return buf.Bytes(), nil
}

// compactTicks labels the default tick marks with the chart number policy.
type compactTicks struct {
	f *numfmt.Formatter
}

func (t compactTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = t.f.Compact(ticks[i].Value)
		}
	}
	return ticks
}

// BuildPlot draws the report's chart: a line chart for simulation series and
// simulate-mode comparisons, a bar chart for the catalog efficiency and the
// comparative index. Non-finite values are left out.
func BuildPlot(report *Report) (*plot.Plot, error) {
	if err := report.Validate(); err != nil {
		return nil, err
	}
	chart, _ := report.numberFormats()
	p := plot.New()
	p.Title.Text = report.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Tick.Marker = compactTicks{f: chart}
	p.Add(plotter.NewGrid())

	switch report.Kind {
	case KindCatalog:
		names := make([]string, 0, len(report.Catalog))
		values := make([]float64, 0, len(report.Catalog))
		for _, c := range report.Catalog {
			names = append(names, c.Name)
			values = append(values, c.Efficiency)
		}
		p.Y.Label.Text = "Efficiency (g/L)"
		if err := addBars(p, names, values); err != nil {
			return nil, err
		}

	case KindSimulation:
		v := report.Simulation
		xys := make(plotter.XYs, 0, len(v.Points))
		for _, pt := range v.Points {
			if finite(pt.Value) {
				xys = append(xys, plotter.XY{X: float64(pt.Year), Y: pt.Value})
			}
		}
		if len(xys) == 0 {
			return nil, fmt.Errorf("%w: simulation has no points", ErrNothingToRender)
		}
		p.X.Label.Text = "Year"
		p.Y.Label.Text = v.Label
		if err := addLine(p, 0, v.CropName, xys); err != nil {
			return nil, err
		}

	case KindCharacteristics:
		v := report.Characteristics
		names := make([]string, 0, len(v.Ratios))
		values := make([]float64, 0, len(v.Ratios))
		for _, r := range v.Ratios {
			names = append(names, r.Title)
			values = append(values, r.Value)
		}
		p.Y.Label.Text = fmt.Sprintf("%s / %s", v.Names[0], v.Names[1])
		if err := addBars(p, names, values); err != nil {
			return nil, err
		}

	case KindSimulateComparison:
		v := report.SimComparison
		if len(v.Chart) == 0 {
			return nil, fmt.Errorf("%w: comparison chart is empty", ErrNothingToRender)
		}
		p.X.Label.Text = "Year"
		p.Y.Label.Text = v.AxisLabel
		for side := 0; side < 2; side++ {
			xys := make(plotter.XYs, 0, len(v.Chart))
			for _, rec := range v.Chart {
				if finite(rec.Values[side]) {
					xys = append(xys, plotter.XY{X: float64(rec.Year), Y: rec.Values[side]})
				}
			}
			if err := addLine(p, side, v.Names[side], xys); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func addLine(p *plot.Plot, i int, name string, xys plotter.XYs) error {
	if len(xys) == 0 {
		return nil
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = plotutil.Color(i)
	p.Add(line)
	if name != "" {
		p.Legend.Add(name, line)
	}
	return nil
}

func addBars(p *plot.Plot, names []string, values []float64) error {
	kept := make([]string, 0, len(names))
	vals := make(plotter.Values, 0, len(values))
	for i, v := range values {
		if finite(v) {
			kept = append(kept, names[i])
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return fmt.Errorf("%w: no finite values to chart", ErrNothingToRender)
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(20))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(kept...)
	return nil
}
