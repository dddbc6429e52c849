package engine

import (
	"github.com/querylens-org/querylens/dataset"
)

// ============================================================================
// DATA TRANSFORMER — raw rows + config → render-ready rows
// ============================================================================
// Branch precedence, first match wins:
//   1. KPI reduction (single-row pass-through, else whole-dataset reduce)
//   2. Multi-series pivot (seriesColumn set, chart is not pie/kpi)
//   3. Group-by aggregation (aggregation active and groupBy set)
//   4. Pass-through
//
// Pure and total: never panics, never mutates the dataset, tolerates
// missing columns and unparseable values by degrading to nil/NaN.
// ============================================================================

// Transform produces the render-ready row set for a dataset under a config.
func Transform(d *dataset.Dataset, cfg ChartConfig) []TransformedRow {
	if d.Empty() {
		return []TransformedRow{}
	}

	if cfg.ChartType == ChartKPI {
		return transformKPI(d, cfg)
	}

	if cfg.SeriesColumn != "" && cfg.ChartType != ChartPie && cfg.ChartType != ChartKPI {
		return transformSeries(d, cfg)
	}

	if !cfg.Aggregation.IsNone() && cfg.GroupBy != "" {
		return transformGrouped(d, cfg.XColumn, cfg.YColumns, cfg.Aggregation, cfg.GroupBy)
	}

	return transformPassthrough(d, cfg.XColumn, cfg.YColumns, cfg.SecondaryYColumn, cfg.HighlightCategory)
}

// ============================================================================
// KPI BRANCH
// ============================================================================

// transformKPI reduces every numeric column into one summary row. A KPI with
// a group-by degrades into the grouped (or pass-through) shape over all
// numeric columns; the routing is an internal decision, the public chart
// type is left alone.
func transformKPI(d *dataset.Dataset, cfg ChartConfig) []TransformedRow {
	if d.Len() == 1 {
		row := d.First()
		out := newTransformedRow(nil)
		for _, col := range d.Columns {
			out.set(col, row[col])
		}
		return []TransformedRow{out}
	}

	first := d.First()
	var numericKeys []string
	for _, col := range d.Columns {
		if dataset.IsNumeric(first[col]) {
			numericKeys = append(numericKeys, col)
		}
	}

	if cfg.GroupBy != "" {
		if !cfg.Aggregation.IsNone() {
			return transformGrouped(d, cfg.XColumn, numericKeys, cfg.Aggregation, cfg.GroupBy)
		}
		return transformPassthrough(d, cfg.XColumn, numericKeys, "", "")
	}

	out := newTransformedRow(nil)
	for _, key := range numericKeys {
		vals := make([]float64, 0, d.Len())
		for _, r := range d.Rows {
			vals = append(vals, coerceCell(r, key))
		}
		out.set(key, reduce(vals, cfg.Aggregation))
	}
	return []TransformedRow{out}
}

// ============================================================================
// MULTI-SERIES BRANCH
// ============================================================================

// transformSeries pivots rows into one output row per x-value with one
// column per (series, measure) pair. Combinations with no contributing rows
// yield nil so the renderer draws a gap instead of a false zero.
func transformSeries(d *dataset.Dataset, cfg ChartConfig) []TransformedRow {
	var allSeries []dataset.Value
	seen := make(map[dataset.Value]bool)
	for _, r := range d.Rows {
		if v, ok := r[cfg.SeriesColumn]; ok && v != nil {
			k := dataset.Key(v)
			if !seen[k] {
				seen[k] = true
				allSeries = append(allSeries, v)
			}
		}
	}

	// Buckets are keyed by the comparable form; xOrder keeps the raw values.
	var xOrder []dataset.Value
	buckets := make(map[dataset.Value]map[dataset.Value][]dataset.Row)
	for _, r := range d.Rows {
		var x dataset.Value = ""
		if v, ok := r[cfg.XColumn]; ok {
			x = dataset.FormatDateValue(v)
		}
		xk := dataset.Key(x)
		byX, ok := buckets[xk]
		if !ok {
			byX = make(map[dataset.Value][]dataset.Row)
			buckets[xk] = byX
			xOrder = append(xOrder, x)
		}
		if sv, ok := r[cfg.SeriesColumn]; ok && sv != nil {
			sk := dataset.Key(sv)
			byX[sk] = append(byX[sk], r)
		}
	}

	attachSecondary := cfg.SecondaryYColumn != "" && !containsKey(cfg.YColumns, cfg.SecondaryYColumn)

	out := make([]TransformedRow, 0, len(xOrder))
	for _, x := range xOrder {
		tr := newTransformedRow(x)
		for _, series := range allSeries {
			for _, key := range cfg.YColumns {
				rows := buckets[dataset.Key(x)][dataset.Key(series)]
				tr.set(seriesKey(series, key, len(cfg.YColumns)), seriesValue(rows, key, cfg.Aggregation))
			}
		}

		// Representative row of the group: the first series' first row.
		var rep dataset.Row
		if len(allSeries) > 0 {
			if rows := buckets[dataset.Key(x)][dataset.Key(allSeries[0])]; len(rows) > 0 {
				rep = rows[0]
			}
		}
		if attachSecondary {
			var v dataset.Value
			if rep != nil {
				if f, ok := dataset.AsNumber(rep[cfg.SecondaryYColumn]); ok {
					v = f
				}
			}
			tr.set(cfg.SecondaryYColumn, v)
		}
		if cfg.HighlightCategory != "" && rep != nil {
			tr.Highlight = rep[cfg.HighlightCategory]
		}

		out = append(out, tr)
	}
	return out
}

// seriesValue computes one (x, series, measure) cell. With no aggregation
// the raw values are stacked — this is the default, not a no-op.
func seriesValue(rows []dataset.Row, key string, agg Aggregation) dataset.Value {
	if len(rows) == 0 {
		return nil
	}
	if agg.IsNone() {
		var total float64
		for _, r := range rows {
			total += coerceCell(r, key)
		}
		return total
	}

	nums := numericSubset(rows, key)
	switch agg {
	case AggAverage:
		if len(nums) == 0 {
			return nil
		}
		return sumOf(nums) / float64(len(nums))
	case AggMedian:
		if len(nums) == 0 {
			return nil
		}
		return median(nums)
	case AggCount:
		return float64(len(rows))
	default:
		return sumOf(nums)
	}
}

// seriesKey is the output column name: the series value alone for a single
// measure, "{series}_{measure}" when several are plotted.
func seriesKey(series dataset.Value, yKey string, yCount int) string {
	if yCount == 1 {
		return dataset.ValueString(series)
	}
	return dataset.ValueString(series) + "_" + yKey
}

// ============================================================================
// GROUPED BRANCH
// ============================================================================

// transformGrouped buckets rows by the group-by value, emitting one row per
// group in first-seen order. The x-label shown is the first row's formatted
// x-value; only the measures are aggregated.
func transformGrouped(d *dataset.Dataset, xCol string, yKeys []string, agg Aggregation, groupBy string) []TransformedRow {
	var order []dataset.Value
	groups := make(map[dataset.Value][]dataset.Row)
	labels := make(map[dataset.Value]dataset.Value)
	for _, r := range d.Rows {
		g := dataset.Key(r[groupBy])
		if _, ok := groups[g]; !ok {
			order = append(order, g)
			if v, ok := r[xCol]; ok {
				labels[g] = dataset.FormatDateValue(v)
			}
		}
		groups[g] = append(groups[g], r)
	}

	out := make([]TransformedRow, 0, len(order))
	for _, g := range order {
		rows := groups[g]
		tr := newTransformedRow(labels[g])
		for _, key := range yKeys {
			nums := numericSubset(rows, key)
			var val float64
			switch agg {
			case AggAverage:
				val = sumOf(nums) / float64(len(nums))
			case AggMedian:
				val = median(nums)
			case AggCount:
				val = float64(len(rows))
			default:
				val = sumOf(nums)
			}
			tr.set(key, val)
		}
		out = append(out, tr)
	}
	return out
}

// ============================================================================
// PASS-THROUGH BRANCH
// ============================================================================

func transformPassthrough(d *dataset.Dataset, xCol string, yKeys []string, secondary, highlightCat string) []TransformedRow {
	attachSecondary := secondary != "" && !containsKey(yKeys, secondary)

	out := make([]TransformedRow, 0, d.Len())
	for _, r := range d.Rows {
		var x dataset.Value = ""
		if v, ok := r[xCol]; ok {
			x = dataset.FormatDateValue(v)
		}
		tr := newTransformedRow(x)
		for _, key := range yKeys {
			tr.set(key, numericOrRaw(r, key))
		}
		if attachSecondary {
			tr.set(secondary, numericOrRaw(r, secondary))
		}
		if highlightCat != "" {
			tr.Highlight = r[highlightCat]
		}
		out = append(out, tr)
	}
	return out
}

// numericOrRaw coerces numeric-looking cells to numbers, passing everything
// else through unchanged.
func numericOrRaw(r dataset.Row, key string) dataset.Value {
	if f, ok := dataset.AsNumber(r[key]); ok {
		return f
	}
	return r[key]
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
