package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSVFormatter writes the report's primary table: the catalog, the
// simulation series, the characteristics table or the comparison chart.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	tables, err := dataTables(report)
	if err != nil {
		return nil, err
	}
	return writeCSV(tables[0])
}

// CSVSummaryFormatter writes the report's secondary table: the simulation
// summary, the comparative index or the comparison summary.
type CSVSummaryFormatter struct{}

func (c CSVSummaryFormatter) Name() string { return "summary-csv" }

// Extension keeps the written file a plain .csv.
func (c CSVSummaryFormatter) Extension() string { return "csv" }

func (c CSVSummaryFormatter) Format(report *Report) ([]byte, error) {
	tables, err := dataTables(report)
	if err != nil {
		return nil, err
	}
	if len(tables) < 2 {
		return nil, fmt.Errorf("%w: %s report has no summary table", ErrNothingToRender, report.Kind)
	}
	return writeCSV(tables[1])
}

func writeCSV(t dataTable) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = csvValue(v)
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
