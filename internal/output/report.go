package output

import (
	"errors"
	"fmt"
	"time"

	"github.com/cropsim/crop-dashboard/internal/analytics"
	"github.com/cropsim/crop-dashboard/internal/catalog"
	"github.com/cropsim/crop-dashboard/internal/series"
	"github.com/cropsim/crop-dashboard/pkg/numfmt"
)

// ErrUnsupportedFormat is returned when a format name resolves to no formatter.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ErrNothingToRender is returned when a report holds no data a formatter can use.
var ErrNothingToRender = errors.New("nothing to render")

// Kind names which view a Report carries
type Kind string

const (
	KindCatalog            Kind = "catalog"
	KindSimulation         Kind = "simulation"
	KindCharacteristics    Kind = "characteristics"
	KindSimulateComparison Kind = "simulate-comparison"
)

// Report is the renderable unit handed to formatters. Exactly one of the
// view fields is set, matching Kind.
type Report struct {
	Kind           Kind      `json:"kind"`
	Title          string    `json:"title"`
	GeneratedAt    time.Time `json:"generated_at"`
	Locale         string    `json:"locale"`
	CurrencySymbol string    `json:"currency_symbol"`

	Catalog         []catalog.ListingRow                `json:"catalog,omitempty"`
	Simulation      *series.View                        `json:"simulation,omitempty"`
	Characteristics *analytics.CharacteristicsView      `json:"characteristics,omitempty"`
	SimComparison   *analytics.SimulationComparisonView `json:"simulate_comparison,omitempty"`
}

func newReport(kind Kind, title string) *Report {
	return &Report{
		Kind:           kind,
		Title:          title,
		GeneratedAt:    nowFunc(),
		Locale:         "en",
		CurrencySymbol: numfmt.DefaultCurrencySymbol,
	}
}

// NewCatalogReport wraps catalog listing rows.
func NewCatalogReport(rows []catalog.ListingRow) *Report {
	r := newReport(KindCatalog, "Crop Catalog")
	r.Catalog = rows
	if r.Catalog == nil {
		r.Catalog = []catalog.ListingRow{}
	}
	return r
}

// NewSimulationReport wraps a single-crop simulation view.
func NewSimulationReport(v *series.View) *Report {
	if v == nil {
		v = series.Build(nil, series.MetricYield)
	}
	title := "Simulation"
	if v.CropName != "" {
		title = "Simulation: " + v.CropName
	}
	r := newReport(KindSimulation, title)
	r.Simulation = v
	return r
}

// NewCharacteristicsReport wraps a characteristics-mode comparison view.
func NewCharacteristicsReport(v *analytics.CharacteristicsView) *Report {
	if v == nil {
		v = analytics.Characteristics(nil)
	}
	r := newReport(KindCharacteristics, comparisonTitle(v.Names, "characteristics"))
	r.Characteristics = v
	return r
}

// NewSimulateComparisonReport wraps a simulate-mode comparison view.
func NewSimulateComparisonReport(v *analytics.SimulationComparisonView) *Report {
	if v == nil {
		v = analytics.Simulation(nil, analytics.ChartYield)
	}
	r := newReport(KindSimulateComparison, comparisonTitle(v.Names, "simulate"))
	r.SimComparison = v
	return r
}

func comparisonTitle(names [2]string, mode string) string {
	if names[0] == "" && names[1] == "" {
		return fmt.Sprintf("Comparison (%s)", mode)
	}
	return fmt.Sprintf("Comparison: %s vs %s (%s)", names[0], names[1], mode)
}

// WithDisplay sets the locale and currency symbol used to render numbers.
func (r *Report) WithDisplay(locale, currencySymbol string) *Report {
	if locale != "" {
		r.Locale = locale
	}
	if currencySymbol != "" {
		r.CurrencySymbol = currencySymbol
	}
	return r
}

// Validate checks that exactly the view named by Kind is present.
func (r *Report) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil report", ErrNothingToRender)
	}
	set := 0
	if r.Catalog != nil {
		set++
	}
	if r.Simulation != nil {
		set++
	}
	if r.Characteristics != nil {
		set++
	}
	if r.SimComparison != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("report must carry exactly one view, has %d", set)
	}
	ok := false
	switch r.Kind {
	case KindCatalog:
		ok = r.Catalog != nil
	case KindSimulation:
		ok = r.Simulation != nil
	case KindCharacteristics:
		ok = r.Characteristics != nil
	case KindSimulateComparison:
		ok = r.SimComparison != nil
	}
	if !ok {
		return fmt.Errorf("report kind %q does not match its view", r.Kind)
	}
	return nil
}

// numberFormats returns the chart and summary formatting policies for r.
func (r *Report) numberFormats() (chart, summary *numfmt.Formatter) {
	symbol := r.CurrencySymbol
	if symbol == "" {
		symbol = numfmt.DefaultCurrencySymbol
	}
	return numfmt.NewChart(r.Locale).WithCurrencySymbol(symbol),
		numfmt.NewSummary(r.Locale).WithCurrencySymbol(symbol)
}
