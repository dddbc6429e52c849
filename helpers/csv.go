package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/querylens-org/querylens/dataset"
)

// ============================================================================
// CSV HELPER — Parses CSV bytes into a Dataset, and exports one back
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, S3, Sheets).
// Cell typing is value-driven: numbers become float64, "true"/"false"
// become bool, empty cells become nil, everything else stays a string.
// ============================================================================

// ParseCSV parses CSV bytes into a Dataset. The first row is the header and
// fixes the column order.
func ParseCSV(data []byte) (*dataset.Dataset, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	columns := make([]string, len(headers))
	for i, h := range headers {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []dataset.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		row := make(dataset.Row, len(columns))
		for i, val := range record {
			if i >= len(columns) {
				break
			}
			row[columns[i]] = typedCell(val)
		}
		rows = append(rows, row)
	}

	return dataset.New(columns, rows), nil
}

// typedCell converts a raw CSV cell to its natural Go value.
func typedCell(val string) dataset.Value {
	trimmed := strings.TrimSpace(val)
	switch {
	case trimmed == "":
		return nil
	case trimmed == "true":
		return true
	case trimmed == "false":
		return false
	}
	if n, ok := dataset.AsNumber(trimmed); ok {
		return n
	}
	return trimmed
}

// WriteCSV writes the dataset in download form: CRLF line endings, strings
// quoted, numbers and booleans bare.
func WriteCSV(w io.Writer, d *dataset.Dataset) error {
	if d == nil || d.Empty() {
		return nil
	}
	for i, col := range d.Columns {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, col); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return err
	}

	for _, row := range d.Rows {
		for i, col := range d.Columns {
			if i > 0 {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, exportCell(row[col])); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return err
		}
	}
	return nil
}

// exportCell renders one cell for CSV download. Strings are always quoted
// with doubled inner quotes; other values are written verbatim.
func exportCell(v dataset.Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	case bool:
		return strconv.FormatBool(t)
	default:
		return dataset.ValueString(v)
	}
}
