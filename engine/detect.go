package engine

import (
	"strings"

	"github.com/querylens-org/querylens/dataset"
)

// ============================================================================
// CONFIG AUTO-DETECTOR — Proposes default axes, chart type, and highlights
// ============================================================================
// Runs once per fresh dataset. Pure and deterministic: the same dataset
// always yields the same proposal, and the input is never mutated.
// ============================================================================

// Column-name keywords that mark a highlight category.
var highlightCategoryKeywords = []string{"anomaly", "flag", "outlier", "alert", "status"}

// Value keywords that mark the highlighted value within that category.
var highlightValueKeywords = []string{"anomaly", "outlier", "alert", "yes", "true", "1"}

// AutoDetect proposes a default chart configuration for a dataset.
//
// Order of decisions: first date-like column sets the x-axis and suggests a
// line chart (overridden to bar when the date never varies); a single-row
// dataset suggests a KPI tile; the x-axis falls back to the first
// string-valued column, then the first column; the first numeric column not
// used for x becomes the y measure, the next one the secondary axis.
func AutoDetect(d *dataset.Dataset) ProposedConfig {
	p := ProposedConfig{
		DefaultChartType:   ChartBar,
		DefaultAggregation: AggNone,
	}
	if d.Empty() {
		return p
	}

	row := d.First()
	cols := d.Columns

	for _, col := range cols {
		if dataset.IsDate(row[col]) {
			p.DefaultX = col
			p.DefaultChartType = ChartLine
			// A constant date cannot drive a time series.
			if d.IsConstant(col) {
				p.DefaultChartType = ChartBar
			}
			break
		}
	}

	if d.Len() == 1 {
		p.DefaultChartType = ChartKPI
	}

	if p.DefaultX == "" {
		for _, col := range cols {
			if _, isString := row[col].(string); isString {
				p.DefaultX = col
				break
			}
		}
	}
	if p.DefaultX == "" && len(cols) > 0 {
		p.DefaultX = cols[0]
	}

	// Generation/wind pairing gets a dedicated dual-axis default.
	obsCol, hasObs := d.HasColumn("obs_kw")
	windCol, hasWind := d.HasColumn("windspeed_100m")
	if hasObs && hasWind {
		p.DefaultChartType = ChartLine
		p.DefaultY = obsCol
		p.DefaultSecondaryY = windCol
	} else {
		for _, col := range cols {
			if col != p.DefaultX && dataset.IsNumeric(row[col]) {
				p.DefaultY = col
				break
			}
		}
		if p.DefaultY == "" {
			if len(cols) > 1 {
				p.DefaultY = cols[1]
			} else if len(cols) == 1 {
				p.DefaultY = cols[0]
			}
		}
		for _, col := range cols {
			if col != p.DefaultX && col != p.DefaultY && dataset.IsNumeric(row[col]) {
				p.DefaultSecondaryY = col
				break
			}
		}
	}

	p.DefaultHighlightCategory = detectHighlightCategory(cols)
	if p.DefaultHighlightCategory != "" {
		p.DefaultHighlightValue = detectHighlightValue(d, p.DefaultHighlightCategory)
	}

	return p
}

func detectHighlightCategory(cols []string) string {
	for _, col := range cols {
		lower := strings.ToLower(col)
		for _, kw := range highlightCategoryKeywords {
			if strings.Contains(lower, kw) {
				return col
			}
		}
	}
	return ""
}

// detectHighlightValue scans the distinct values of the highlight column.
// Literal false maps to the string "True" and literal 0 to the number 1 —
// kept for compatibility with stored dashboards that rely on it.
func detectHighlightValue(d *dataset.Dataset, category string) dataset.Value {
	values := d.DistinctValues(category)
	for _, val := range values {
		lower := strings.ToLower(dataset.ValueString(val))
		if lower == "false" {
			return "True"
		}
		if lower == "0" {
			return float64(1)
		}
		for _, kw := range highlightValueKeywords {
			if strings.Contains(lower, kw) {
				return val
			}
		}
	}
	for _, val := range values {
		if strings.Contains(strings.ToLower(dataset.ValueString(val)), "anomaly") {
			return val
		}
	}
	return nil
}
