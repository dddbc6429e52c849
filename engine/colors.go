package engine

import (
	"github.com/querylens-org/querylens/dataset"
)

// ============================================================================
// COLOR ASSIGNMENT — stable palette cycling for series and highlights
// ============================================================================
// Config-level only: renderers receive hex strings, the engine never draws.

// seriesPalette cycles across chart series.
var seriesPalette = []string{
	"#5C7285", "#FFA600", "#FF7C43", "#F95D6A", "#8B5CF6",
	"#06B6D4", "#10B981", "#84CC16", "#EC4899", "#6366F1",
}

// highlightPalette colors bars by their highlight value.
var highlightPalette = []string{
	"#5C7285", "#F95D6A", "#5C856F", "#2E8B57", "#4E6E8F",
}

// SeriesColor returns the palette color for a series index.
func SeriesColor(index int) string {
	if index < 0 {
		index = -index
	}
	return seriesPalette[index%len(seriesPalette)]
}

// AssignColors returns one palette color per series.
func AssignColors(count int) []string {
	colors := make([]string, count)
	for i := range colors {
		colors[i] = SeriesColor(i)
	}
	return colors
}

// HighlightValues collects the distinct non-empty highlight values across
// transformed rows, in first-seen order.
func HighlightValues(rows []TransformedRow) []dataset.Value {
	seen := make(map[dataset.Value]bool)
	var out []dataset.Value
	for _, r := range rows {
		v := r.Highlight
		if isEmptyValue(v) || v == false || v == float64(0) {
			continue
		}
		k := dataset.Key(v)
		if !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	return out
}

// HighlightColor maps a highlight value to a stable color given the distinct
// value list of the chart.
func HighlightColor(values []dataset.Value, v dataset.Value) string {
	k := dataset.Key(v)
	for i, candidate := range values {
		if dataset.Key(candidate) == k {
			return highlightPalette[i%len(highlightPalette)]
		}
	}
	return highlightPalette[0]
}
