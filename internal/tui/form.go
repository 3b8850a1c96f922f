package tui

import (
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cropsim/crop-dashboard/internal/analytics"
	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/internal/series"
)

type fieldKind int

const (
	fieldOption fieldKind = iota
	fieldCrop1
	fieldCrop2
	fieldYears
	fieldWater
	fieldMetric
	fieldChart
)

var (
	metrics = []series.Metric{series.MetricYield, series.MetricCost, series.MetricEfficiency}
	charts  = []analytics.ChartType{analytics.ChartYield, analytics.ChartCost}
	options = []domain.Option{domain.OptionCharacteristics, domain.OptionSimulate}
)

// form is the focus and text-entry state of one tab's inputs. Choice fields
// live on the session itself; only free text is held here.
type form struct {
	fields []fieldKind
	focus  int
	years  textinput.Model
	water  textinput.Model
	err    string
}

func newForm(fields []fieldKind, years int, water float64) form {
	y := textinput.New()
	y.CharLimit = 3
	y.Width = 6
	y.SetValue(strconv.Itoa(years))

	w := textinput.New()
	w.CharLimit = 12
	w.Width = 14
	w.SetValue(strconv.FormatFloat(water, 'f', -1, 64))

	return form{fields: fields, years: y, water: w}
}

func (f *form) current() fieldKind { return f.fields[f.focus] }

func (f *form) move(key string) tea.Cmd {
	if key == "up" {
		f.focus = (f.focus + len(f.fields) - 1) % len(f.fields)
	} else {
		f.focus = (f.focus + 1) % len(f.fields)
	}
	f.years.Blur()
	f.water.Blur()
	switch f.current() {
	case fieldYears:
		return f.years.Focus()
	case fieldWater:
		return f.water.Focus()
	}
	return nil
}

func (f *form) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.current() {
	case fieldYears:
		f.years, cmd = f.years.Update(msg)
	case fieldWater:
		f.water, cmd = f.water.Update(msg)
	}
	return cmd
}

// horizon parses the years and water inputs.
func (f *form) horizon() (int, float64, error) {
	years, err := strconv.Atoi(strings.TrimSpace(f.years.Value()))
	if err != nil {
		return 0, 0, &domain.ValidationError{Field: "years", Message: "Years must be a whole number"}
	}
	water, err := strconv.ParseFloat(strings.TrimSpace(f.water.Value()), 64)
	if err != nil {
		return 0, 0, &domain.ValidationError{Field: "water_availability", Message: "Water availability must be a number"}
	}
	return years, water, nil
}

func stepFor(key string) int {
	if key == "left" {
		return -1
	}
	return 1
}

func cycle[T comparable](vals []T, cur T, step int) T {
	i := slices.Index(vals, cur)
	if i < 0 {
		return vals[0]
	}
	return vals[(i+step+len(vals))%len(vals)]
}

// cycleCrop steps through the catalog. An unset selection starts at the
// first crop going forward and the last going back.
func cycleCrop(crops []domain.Crop, id string, step int) string {
	if len(crops) == 0 {
		return ""
	}
	i := slices.IndexFunc(crops, func(c domain.Crop) bool { return c.ID == id })
	if i < 0 {
		if step < 0 {
			return crops[len(crops)-1].ID
		}
		return crops[0].ID
	}
	return crops[(i+step+len(crops))%len(crops)].ID
}
