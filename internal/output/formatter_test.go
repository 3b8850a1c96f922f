package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cropsim/crop-dashboard/internal/analytics"
	"github.com/cropsim/crop-dashboard/internal/catalog"
	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/internal/series"
)

var testCrops = []domain.Crop{
	{ID: "wheat", Name: "Wheat", CostPerCrop: 0.5, YieldPerCrop: 0.3, SpaceRequired: 0.1, DaysToMature: 120, WaterNeeded: 0.5, NutritionalIndex: 70},
	{ID: "rice", Name: "Rice", CostPerCrop: 0.6, YieldPerCrop: 0.4, SpaceRequired: 0.1, DaysToMature: 150, WaterNeeded: 1, NutritionalIndex: 80},
}

func buildCatalogReport() *Report {
	return NewCatalogReport(catalog.Listing(testCrops))
}

func buildCharacteristicsReport() *Report {
	a := domain.Crop{ID: "a", Name: "CropA", CostPerCrop: 2, YieldPerCrop: 10, SpaceRequired: 1, DaysToMature: 100, WaterNeeded: 1, NutritionalIndex: 50}
	b := domain.Crop{ID: "b", Name: "CropB", CostPerCrop: 4, YieldPerCrop: 8, SpaceRequired: 1, DaysToMature: 80, WaterNeeded: 2, NutritionalIndex: 60}
	return NewCharacteristicsReport(analytics.Characteristics(analytics.LocalCharacteristics(a, b)))
}

func buildSimComparisonReport() *Report {
	c := &domain.SimulationComparison{
		Crop1: domain.CropTrajectory{Name: "A", AccumYield: []float64{10, 20, 30}, AccumCost: []float64{1, 2, 3}, TotalYield: 30, TotalCost: 3, AverageEfficiency: 1.5, AverageYield: 10, ValuePerLitre: 0.2, ValuePerArea: 4},
		Crop2: domain.CropTrajectory{Name: "B", AccumYield: []float64{5, 25, 45}, AccumCost: []float64{2, 4, 6}, TotalYield: 45, TotalCost: 6, AverageEfficiency: 1.5, AverageYield: 15, ValuePerLitre: 0.1, ValuePerArea: 5},
	}
	return NewSimulateComparisonReport(analytics.Simulation(c, analytics.ChartYield))
}

func buildSimulationReport() *Report {
	res := &domain.SimulationResult{
		Crop: &domain.Crop{ID: "wheat", Name: "Wheat"},
		AnnualData: []domain.YearRecord{
			{Year: 1, AnnualYield: 1200, AnnualCost: 300, AnnualEfficiency: 2},
			{Year: 2, AnnualYield: 1500, AnnualCost: 300, AnnualEfficiency: 2.5},
		},
		Summary: domain.SummaryStats{SumOfYield: 2700, SumOfCost: 600, AverageEfficiency: 2.25, YieldPerYearAvg: 1350, ValuePerLitre: 0.05, ValuePerArea: 12.5},
	}
	return NewSimulationReport(series.Build(res, series.MetricYield))
}

func plainConsole() ConsoleFormatter {
	s := PlainStyles()
	return ConsoleFormatter{Styles: &s}
}

func TestConsoleFormatterMarksBetterAndWorse(t *testing.T) {
	out, err := plainConsole().Format(buildCharacteristicsReport())
	require.NoError(t, err)
	content := string(out)
	assert.Contains(t, content, "$2.00 (better)")
	assert.Contains(t, content, "$4.00 (worse)")
	assert.Contains(t, content, "Comparative Index")
	assert.Contains(t, content, "0.50")
	assert.Contains(t, content, "1.25")
	assert.Contains(t, content, "1.00 (better)")
	assert.Contains(t, content, "2.00 (worse)")
	assert.Contains(t, content, "CropA is better on 4 of 7 metrics.")
}

func TestConsoleFormatterCrossoverNote(t *testing.T) {
	out, err := plainConsole().Format(buildSimComparisonReport())
	require.NoError(t, err)
	assert.Contains(t, string(out), "B takes the lead after 1.50 years (15 at the crossover, year 2).")
	assert.Contains(t, string(out), "Cumulative Yield (kg)")
}

func TestConsoleFormatterEmptyChartNote(t *testing.T) {
	c := &domain.SimulationComparison{
		Crop1: domain.CropTrajectory{Name: "A", AccumYield: []float64{1, 2, 3, 4, 5}, AccumCost: []float64{1, 2, 3, 4, 5}},
		Crop2: domain.CropTrajectory{Name: "B", AccumYield: []float64{1, 2, 3}, AccumCost: []float64{1, 2, 3}},
	}
	out, err := plainConsole().Format(NewSimulateComparisonReport(analytics.Simulation(c, analytics.ChartYield)))
	require.NoError(t, err)
	assert.Contains(t, string(out), "No chart data")
}

func TestConsoleFormatterSimulation(t *testing.T) {
	out, err := plainConsole().Format(buildSimulationReport())
	require.NoError(t, err)
	content := string(out)
	assert.True(t, strings.HasPrefix(content, "SIMULATION: WHEAT"))
	assert.Contains(t, content, "1.2K")
	assert.Contains(t, content, "1.5K")
	assert.Contains(t, content, "$600")
	assert.Contains(t, content, "2.25")
}

func TestCSVFormatterCatalogOrder(t *testing.T) {
	out, err := CSVFormatter{}.Format(buildCatalogReport())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "wheat,Wheat,0.5,0.3,0.1,120,0.5,70,5"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "rice,Rice,"), lines[2])
}

func TestCSVSummaryFormatter(t *testing.T) {
	out, err := CSVSummaryFormatter{}.Format(buildCharacteristicsReport())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "cost_ratio,Cost Ratio,0.5", lines[1])

	_, err = CSVSummaryFormatter{}.Format(buildCatalogReport())
	assert.True(t, errors.Is(err, ErrNothingToRender))
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildSimComparisonReport())
	require.NoError(t, err)
	var decoded struct {
		Kind string `json:"kind"`
		Sim  struct {
			Chart     []map[string]float64 `json:"chart"`
			Crossover map[string]any       `json:"crossover"`
		} `json:"simulate_comparison"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "simulate-comparison", decoded.Kind)
	require.Len(t, decoded.Sim.Chart, 3)
	assert.Equal(t, map[string]float64{"year": 1, "A": 10, "B": 5}, decoded.Sim.Chart[0])
	assert.NotNil(t, decoded.Sim.Crossover)
}

func TestXLSXFormatter(t *testing.T) {
	r := buildCharacteristicsReport()
	r.Characteristics.Ratios[6].Value = 1 / zero()
	out, err := XLSXFormatter{}.Format(r)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Characteristics", "Ratios"}, f.GetSheetList())

	v, err := f.GetCellValue("Characteristics", "A2")
	require.NoError(t, err)
	assert.Equal(t, "cost_per_crop", v)
	v, err = f.GetCellValue("Characteristics", "E2")
	require.NoError(t, err)
	assert.Equal(t, "better", v)
	v, err = f.GetCellValue("Ratios", "C8")
	require.NoError(t, err)
	assert.Equal(t, "Infinity", v)
}

func zero() float64 { return 0 }

func TestChartFormatters(t *testing.T) {
	png, err := ChartFormatter{Type: "png"}.Format(buildSimComparisonReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	svg, err := ChartFormatter{Type: "svg"}.Format(buildCatalogReport())
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	_, err = ChartFormatter{Type: "svg"}.Format(buildCharacteristicsReport())
	assert.NoError(t, err)
	_, err = ChartFormatter{Type: "png"}.Format(buildSimulationReport())
	assert.NoError(t, err)
}

func TestChartFormatterEmptyComparison(t *testing.T) {
	r := NewSimulateComparisonReport(analytics.Simulation(nil, analytics.ChartCost))
	_, err := ChartFormatter{Type: "png"}.Format(r)
	assert.True(t, errors.Is(err, ErrNothingToRender))
}

func TestHTMLFormatter(t *testing.T) {
	out, err := HTMLFormatter{}.Format(buildSimComparisonReport())
	require.NoError(t, err)
	content := string(out)
	assert.Contains(t, content, "<svg")
	assert.NotContains(t, content, "<?xml")
	assert.Contains(t, content, `class="better"`)
	assert.Contains(t, content, "takes the lead")
	assert.Contains(t, content, "Key Assumptions")

	// a comparison without chart data still renders its tables
	out, err = HTMLFormatter{}.Format(NewSimulateComparisonReport(analytics.Simulation(nil, analytics.ChartYield)))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<svg")
}

// Golden snapshot tests (prefix-based) ensure key headers remain stable.
func TestGoldenSnapshots(t *testing.T) {
	cases := []struct {
		name      string
		golden    string
		formatter Formatter
		report    *Report
	}{
		{"console_catalog", "console_catalog.golden", plainConsole(), buildCatalogReport()},
		{"console_characteristics", "console_characteristics.golden", plainConsole(), buildCharacteristicsReport()},
		{"csv_catalog", "csv_catalog.golden", CSVFormatter{}, buildCatalogReport()},
		{"csv_simulate_comparison", "csv_simulate_comparison.golden", CSVFormatter{}, buildSimComparisonReport()},
		{"summary_csv", "summary_csv_characteristics.golden", CSVSummaryFormatter{}, buildCharacteristicsReport()},
		{"html", "html_prefix.golden", HTMLFormatter{}, buildCatalogReport()},
	}

	update := os.Getenv("UPDATE_GOLDEN") == "1"
	for _, tc := range cases {
		out, err := tc.formatter.Format(tc.report)
		if err != nil {
			t.Fatalf("%s: format error: %v", tc.name, err)
		}
		goldenPath := filepath.Join("testdata", tc.golden)
		if update {
			// only first line to keep golden small & stable
			line := firstLine(string(out)) + "\n"
			if err := os.WriteFile(goldenPath, []byte(line), 0644); err != nil {
				t.Fatalf("%s: update golden failed: %v", tc.name, err)
			}
		}
		data, err := os.ReadFile(goldenPath)
		if err != nil {
			t.Fatalf("%s: read golden: %v", tc.name, err)
		}
		if !strings.HasPrefix(string(out), strings.TrimSpace(string(data))) {
			t.Fatalf("%s: output does not match golden prefix %q", tc.name, strings.TrimSpace(string(data)))
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func TestFormatterAliasResolution(t *testing.T) {
	tests := map[string]string{
		"excel":       "xlsx",
		"TEXT":        "console",
		"csv-summary": "summary-csv",
		"chart":       "png",
		"svg":         "svg",
	}
	for alias, want := range tests {
		f := GetFormatterByName(alias)
		if f == nil {
			t.Fatalf("alias %s did not resolve to a formatter", alias)
		}
		if f.Name() != want {
			t.Fatalf("alias %s resolved to %q, want %q", alias, f.Name(), want)
		}
	}
}

func TestUnknownFormatErrorIncludesSuggestions(t *testing.T) {
	_, err := ResolveFormatter("definitely-not-a-format")
	if err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "unsupported report format") || !strings.Contains(msg, "Try one of:") {
		t.Fatalf("error message missing suggestions: %s", msg)
	}
}

func TestAvailableFormatterNamesSorted(t *testing.T) {
	names := AvailableFormatterNames()
	assert.Equal(t, []string{"console", "csv", "html", "json", "png", "summary-csv", "svg", "xlsx"}, names)
	assert.Contains(t, AvailableFormatAliases(), "excel")
}

func TestWriteFormatted(t *testing.T) {
	SetNowFunc(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) })
	defer SetNowFunc(time.Now)

	dir := filepath.Join(t.TempDir(), "reports")
	path, err := WriteFormatted(plainConsole(), buildCatalogReport(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cropsim_catalog_20260102_030405.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "CROP CATALOG"))

	path, err = WriteFormatted(CSVSummaryFormatter{}, buildCharacteristicsReport(), dir)
	require.NoError(t, err)
	assert.Equal(t, ".csv", filepath.Ext(path))
}
