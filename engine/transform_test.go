package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querylens-org/querylens/dataset"
)

// ============================================================================
// TRANSFORM TESTS
// ============================================================================

func salesDataset() *dataset.Dataset {
	return dataset.New([]string{"day", "region", "sales", "margin"}, []dataset.Row{
		{"day": "2024-03-01", "region": "west", "sales": 10.0, "margin": 0.3},
		{"day": "2024-03-01", "region": "east", "sales": 20.0, "margin": 0.4},
		{"day": "2024-03-02", "region": "west", "sales": 5.0, "margin": 0.2},
	})
}

func TestTransformEmptyDataset(t *testing.T) {
	rows := Transform(dataset.New(nil, nil), DefaultConfig())
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestTransformDoesNotMutateDataset(t *testing.T) {
	d := salesDataset()
	cfg := ChartConfig{XColumn: "day", YColumns: []string{"sales"}, Aggregation: AggSum, GroupBy: "region"}
	Transform(d, cfg)

	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 10.0, d.Rows[0]["sales"])
	assert.Equal(t, "2024-03-01", d.Rows[0]["day"])
}

// ── Pass-through ─────────────────────────────────────────────────────────────

func TestPassthroughCoercesNumericStrings(t *testing.T) {
	d := dataset.New([]string{"label", "reading"}, []dataset.Row{
		{"label": "a", "reading": "12.5"},
		{"label": "b", "reading": "oops"},
	})
	cfg := ChartConfig{XColumn: "label", YColumns: []string{"reading"}}
	rows := Transform(d, cfg)

	require.Len(t, rows, 2)
	assert.Equal(t, 12.5, rows[0].Values["reading"])
	assert.Equal(t, "oops", rows[1].Values["reading"])
}

func TestPassthroughFormatsDateX(t *testing.T) {
	rows := Transform(salesDataset(), ChartConfig{XColumn: "day", YColumns: []string{"sales"}})

	require.Len(t, rows, 3)
	assert.Equal(t, "1 Mar 2024", rows[0].X)
	assert.Equal(t, "2 Mar 2024", rows[2].X)
}

func TestPassthroughMissingXColumn(t *testing.T) {
	rows := Transform(salesDataset(), ChartConfig{XColumn: "nope", YColumns: []string{"sales"}})

	require.Len(t, rows, 3)
	assert.Equal(t, "", rows[0].X)
}

func TestPassthroughAttachesSecondaryAndHighlight(t *testing.T) {
	d := dataset.New([]string{"day", "sales", "margin", "status"}, []dataset.Row{
		{"day": "2024-03-01", "sales": 10.0, "margin": 0.3, "status": "ok"},
		{"day": "2024-03-02", "sales": 90.0, "margin": 0.1, "status": "alert"},
	})
	cfg := ChartConfig{
		XColumn:           "day",
		YColumns:          []string{"sales"},
		SecondaryYColumn:  "margin",
		HighlightCategory: "status",
	}
	rows := Transform(d, cfg)

	require.Len(t, rows, 2)
	assert.Equal(t, 0.3, rows[0].Values["margin"])
	assert.Equal(t, "ok", rows[0].Highlight)
	assert.Equal(t, "alert", rows[1].Highlight)
	assert.Equal(t, []string{"sales", "margin"}, rows[0].Keys)
}

// ── Grouped aggregation ──────────────────────────────────────────────────────

func TestGroupedSum(t *testing.T) {
	cfg := ChartConfig{XColumn: "day", YColumns: []string{"sales"}, Aggregation: AggSum, GroupBy: "region"}
	rows := Transform(salesDataset(), cfg)

	require.Len(t, rows, 2)
	// Groups come out in first-seen order: west, east.
	assert.Equal(t, 15.0, rows[0].Values["sales"])
	assert.Equal(t, 20.0, rows[1].Values["sales"])
	// The label is the first group row's formatted x-value.
	assert.Equal(t, "1 Mar 2024", rows[0].X)
	assert.Equal(t, "1 Mar 2024", rows[1].X)
}

func TestGroupedAverageAndCount(t *testing.T) {
	d := salesDataset()

	avg := Transform(d, ChartConfig{XColumn: "day", YColumns: []string{"sales"}, Aggregation: AggAverage, GroupBy: "region"})
	require.Len(t, avg, 2)
	assert.Equal(t, 7.5, avg[0].Values["sales"])

	count := Transform(d, ChartConfig{XColumn: "day", YColumns: []string{"sales"}, Aggregation: AggCount, GroupBy: "region"})
	assert.Equal(t, 2.0, count[0].Values["sales"])
	assert.Equal(t, 1.0, count[1].Values["sales"])
}

func TestGroupedMedian(t *testing.T) {
	d := dataset.New([]string{"g", "v"}, []dataset.Row{
		{"g": "a", "v": 1.0},
		{"g": "a", "v": 2.0},
		{"g": "a", "v": 3.0},
		{"g": "a", "v": 4.0},
		{"g": "b", "v": 2.0},
		{"g": "b", "v": 9.0},
		{"g": "b", "v": 1.0},
	})
	cfg := ChartConfig{YColumns: []string{"v"}, Aggregation: AggMedian, GroupBy: "g"}
	rows := Transform(d, cfg)

	require.Len(t, rows, 2)
	// Even-sized group: midpoint average. Odd-sized group: middle value.
	assert.Equal(t, 2.5, rows[0].Values["v"])
	assert.Equal(t, 2.0, rows[1].Values["v"])
}

func TestGroupedAverageOfNonNumericIsNaN(t *testing.T) {
	d := dataset.New([]string{"g", "label"}, []dataset.Row{
		{"g": "a", "label": "x"},
		{"g": "a", "label": "y"},
	})
	cfg := ChartConfig{YColumns: []string{"label"}, Aggregation: AggAverage, GroupBy: "g"}
	rows := Transform(d, cfg)

	require.Len(t, rows, 1)
	v, ok := rows[0].Values["label"].(float64)
	require.True(t, ok)
	assert.True(t, math.IsNaN(v))
}

// ── Multi-series pivot ───────────────────────────────────────────────────────

func TestSeriesPivotBasic(t *testing.T) {
	cfg := ChartConfig{
		ChartType:    ChartLine,
		XColumn:      "day",
		YColumns:     []string{"sales"},
		SeriesColumn: "region",
	}
	rows := Transform(salesDataset(), cfg)

	require.Len(t, rows, 2)
	assert.Equal(t, "1 Mar 2024", rows[0].X)
	assert.Equal(t, 10.0, rows[0].Values["west"])
	assert.Equal(t, 20.0, rows[0].Values["east"])

	// No east row on the second day: a gap, not a zero.
	assert.Equal(t, 5.0, rows[1].Values["west"])
	v, present := rows[1].Values["east"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestSeriesPivotMultipleMeasuresPrefixKeys(t *testing.T) {
	cfg := ChartConfig{
		ChartType:    ChartLine,
		XColumn:      "day",
		YColumns:     []string{"sales", "margin"},
		SeriesColumn: "region",
	}
	rows := Transform(salesDataset(), cfg)

	require.Len(t, rows, 2)
	assert.Equal(t, 10.0, rows[0].Values["west_sales"])
	assert.Equal(t, 0.3, rows[0].Values["west_margin"])
	assert.Equal(t, 20.0, rows[0].Values["east_sales"])
}

func TestSeriesPivotAggregates(t *testing.T) {
	d := dataset.New([]string{"day", "region", "sales"}, []dataset.Row{
		{"day": "2024-03-01", "region": "west", "sales": 10.0},
		{"day": "2024-03-01", "region": "west", "sales": 30.0},
	})

	sum := Transform(d, ChartConfig{ChartType: ChartBar, XColumn: "day", YColumns: []string{"sales"}, SeriesColumn: "region", Aggregation: AggSum})
	require.Len(t, sum, 1)
	assert.Equal(t, 40.0, sum[0].Values["west"])

	avg := Transform(d, ChartConfig{ChartType: ChartBar, XColumn: "day", YColumns: []string{"sales"}, SeriesColumn: "region", Aggregation: AggAverage})
	assert.Equal(t, 20.0, avg[0].Values["west"])

	count := Transform(d, ChartConfig{ChartType: ChartBar, XColumn: "day", YColumns: []string{"sales"}, SeriesColumn: "region", Aggregation: AggCount})
	assert.Equal(t, 2.0, count[0].Values["west"])
}

func TestSeriesPivotSkipsNilSeriesValues(t *testing.T) {
	d := dataset.New([]string{"day", "region", "sales"}, []dataset.Row{
		{"day": "2024-03-01", "region": nil, "sales": 10.0},
		{"day": "2024-03-01", "region": "west", "sales": 30.0},
	})
	cfg := ChartConfig{ChartType: ChartBar, XColumn: "day", YColumns: []string{"sales"}, SeriesColumn: "region"}
	rows := Transform(d, cfg)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"west"}, rows[0].Keys)
}

func TestSeriesPivotNonScalarSeriesValues(t *testing.T) {
	// Slice-valued cells bucket by their string form instead of blowing up
	// the pivot maps.
	d := dataset.New([]string{"day", "tags", "sales"}, []dataset.Row{
		{"day": "2024-03-01", "tags": []any{"a"}, "sales": 10.0},
		{"day": "2024-03-02", "tags": []any{"a"}, "sales": 20.0},
		{"day": "2024-03-02", "tags": []any{"b"}, "sales": 5.0},
	})
	cfg := ChartConfig{ChartType: ChartBar, XColumn: "day", YColumns: []string{"sales"}, SeriesColumn: "tags"}
	rows := Transform(d, cfg)

	require.Len(t, rows, 2)
	assert.Equal(t, 10.0, rows[0].Values["[a]"])
	assert.Equal(t, 20.0, rows[1].Values["[a]"])
	assert.Equal(t, 5.0, rows[1].Values["[b]"])
}

func TestGroupedNonScalarGroupValues(t *testing.T) {
	d := dataset.New([]string{"day", "meta", "sales"}, []dataset.Row{
		{"day": "2024-03-01", "meta": map[string]any{"k": "x"}, "sales": 10.0},
		{"day": "2024-03-02", "meta": map[string]any{"k": "x"}, "sales": 30.0},
	})
	cfg := ChartConfig{ChartType: ChartBar, XColumn: "day", YColumns: []string{"sales"}, GroupBy: "meta", Aggregation: AggSum}
	rows := Transform(d, cfg)

	require.Len(t, rows, 1)
	assert.Equal(t, 40.0, rows[0].Values["sales"])
}

func TestSeriesPivotSecondaryFromRepresentativeRow(t *testing.T) {
	d := dataset.New([]string{"day", "region", "sales", "margin"}, []dataset.Row{
		{"day": "2024-03-01", "region": "west", "sales": 10.0, "margin": 0.3},
		{"day": "2024-03-01", "region": "east", "sales": 20.0, "margin": 0.4},
		{"day": "2024-03-02", "region": "east", "sales": 7.0, "margin": 0.6},
	})
	cfg := ChartConfig{
		ChartType:        ChartLine,
		XColumn:          "day",
		YColumns:         []string{"sales"},
		SeriesColumn:     "region",
		SecondaryYColumn: "margin",
	}
	rows := Transform(d, cfg)

	require.Len(t, rows, 2)
	// Representative row is the first series' first row for that x.
	assert.Equal(t, 0.3, rows[0].Values["margin"])
	// Second day has no west row, so the secondary value is a gap.
	assert.Nil(t, rows[1].Values["margin"])
}

func TestSeriesColumnIgnoredForPie(t *testing.T) {
	cfg := ChartConfig{ChartType: ChartPie, XColumn: "region", YColumns: []string{"sales"}, SeriesColumn: "region"}
	rows := Transform(salesDataset(), cfg)

	// Pie charts fall through to pass-through, one slice per row.
	require.Len(t, rows, 3)
	assert.Equal(t, "west", rows[0].X)
}

// ── KPI reduction ────────────────────────────────────────────────────────────

func TestKPISingleRowPassesEverythingThrough(t *testing.T) {
	d := dataset.New([]string{"total", "label"}, []dataset.Row{
		{"total": 1234.5, "label": "March"},
	})
	rows := Transform(d, ChartConfig{ChartType: ChartKPI})

	require.Len(t, rows, 1)
	assert.Equal(t, 1234.5, rows[0].Values["total"])
	assert.Equal(t, "March", rows[0].Values["label"])
	assert.Equal(t, []string{"total", "label"}, rows[0].Keys)
}

func TestKPIDefaultsToSum(t *testing.T) {
	rows := Transform(salesDataset(), ChartConfig{ChartType: ChartKPI})

	require.Len(t, rows, 1)
	assert.Equal(t, 35.0, rows[0].Values["sales"])
	assert.InDelta(t, 0.9, rows[0].Values["margin"].(float64), 1e-9)
	// Non-numeric columns are left out of the reduction.
	assert.NotContains(t, rows[0].Values, "region")
}

func TestKPIAverage(t *testing.T) {
	rows := Transform(salesDataset(), ChartConfig{ChartType: ChartKPI, Aggregation: AggAverage})

	require.Len(t, rows, 1)
	assert.InDelta(t, 35.0/3, rows[0].Values["sales"].(float64), 1e-9)
}

func TestKPIWithGroupByUsesGroupedShape(t *testing.T) {
	cfg := ChartConfig{ChartType: ChartKPI, XColumn: "day", Aggregation: AggSum, GroupBy: "region"}
	rows := Transform(salesDataset(), cfg)

	require.Len(t, rows, 2)
	// All numeric columns are aggregated per group.
	assert.Equal(t, 15.0, rows[0].Values["sales"])
	assert.InDelta(t, 0.5, rows[0].Values["margin"].(float64), 1e-9)
}

func TestKPIWithGroupByNoAggregationPassesThrough(t *testing.T) {
	cfg := ChartConfig{ChartType: ChartKPI, XColumn: "day", GroupBy: "region"}
	rows := Transform(salesDataset(), cfg)

	// One output row per input row, numeric columns only.
	require.Len(t, rows, 3)
	assert.Equal(t, 10.0, rows[0].Values["sales"])
	assert.NotContains(t, rows[0].Values, "region")
}
