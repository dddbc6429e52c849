package helpers

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/querylens-org/querylens/dataset"
)

// ============================================================================
// EXCEL HELPER — Parses an .xlsx sheet into a Dataset
// ============================================================================

// ParseXLSX reads one sheet of an Excel workbook into a Dataset. An empty
// sheetName means the first sheet. The first row is the header; cells are
// typed the same way as CSV cells.
func ParseXLSX(filePath, sheetName string) (*dataset.Dataset, error) {
	file, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening Excel file: %w", err)
	}
	defer file.Close()

	if sheetName == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheetName = sheets[0]
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return dataset.New(nil, nil), nil
	}

	columns := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		columns[i] = strings.TrimSpace(h)
	}

	var out []dataset.Row
	for _, row := range rows[1:] {
		r := make(dataset.Row, len(columns))
		for j, col := range columns {
			if j < len(row) {
				r[col] = typedCell(row[j])
			} else {
				r[col] = nil // short rows pad with empty cells
			}
		}
		out = append(out, r)
	}

	return dataset.New(columns, out), nil
}
