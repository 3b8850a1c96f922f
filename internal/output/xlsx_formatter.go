package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXFormatter writes every table of the report to its own worksheet.
type XLSXFormatter struct{}

func (x XLSXFormatter) Name() string { return "xlsx" }

func (x XLSXFormatter) Format(report *Report) ([]byte, error) {
	tables, err := dataTables(report)
	if err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		sheet := t.Name
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		for col, header := range t.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, header); err != nil {
				return nil, err
			}
			if err := f.SetColWidth(sheet, columnName(col), columnName(col), 18); err != nil {
				return nil, err
			}
		}
		for r, row := range t.Rows {
			for col, v := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, r+2)
				if err != nil {
					return nil, err
				}
				if fv, ok := v.(float64); ok {
					v = safeCell(fv)
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return nil, fmt.Errorf("sheet %s cell %s: %w", sheet, cell, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func columnName(col int) string {
	name, _ := excelize.ColumnNumberToName(col + 1)
	return name
}
