package render

import (
	"fmt"

	"github.com/querylens-org/querylens/dataset"
	"github.com/querylens-org/querylens/engine"
)

// ============================================================================
// TABLE BUILDER — Produces TableData previews of a dataset
// ============================================================================
// The preview shows the raw result rows ahead of any chart transform, with
// numeric cells formatted by the chart's formatting settings.
// ============================================================================

// Column describes one preview table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"` // "number" or "text"
	Align string `json:"align"`
}

// TableData is a render-ready preview table.
type TableData struct {
	Columns   []Column   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Truncated bool       `json:"truncated"`
	TotalRows int        `json:"totalRows"`
}

// BuildPreview renders the first limit rows of a dataset as display strings.
// A limit of 0 or less means all rows.
func BuildPreview(d *dataset.Dataset, cfg engine.ChartConfig, limit int) *TableData {
	if d == nil || d.Empty() {
		return &TableData{Columns: []Column{}, Rows: [][]string{}}
	}

	kinds := dataset.ClassifyDataset(d)
	columns := make([]Column, 0, len(d.Columns))
	for _, key := range d.Columns {
		col := Column{Key: key, Label: key, Type: "text", Align: "left"}
		if kinds[key] == dataset.KindNumeric {
			col.Type = "number"
			col.Align = "right"
		}
		columns = append(columns, col)
	}

	n := d.Len()
	truncated := false
	if limit > 0 && n > limit {
		n = limit
		truncated = true
	}

	rows := make([][]string, 0, n)
	for _, r := range d.Rows[:n] {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			v := r[col.Key]
			if col.Type == "number" && dataset.IsNumeric(v) {
				row = append(row, cfg.FormatValue(v))
			} else {
				row = append(row, dataset.ValueString(v))
			}
		}
		rows = append(rows, row)
	}

	return &TableData{
		Columns:   columns,
		Rows:      rows,
		Truncated: truncated,
		TotalRows: d.Len(),
	}
}

// Caption summarizes a preview for display under the table.
func (t *TableData) Caption() string {
	if t.Truncated {
		return fmt.Sprintf("Showing %d of %d rows", len(t.Rows), t.TotalRows)
	}
	return fmt.Sprintf("%d rows", len(t.Rows))
}
