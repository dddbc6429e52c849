package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/querylens-org/querylens/dataset"
	"github.com/querylens-org/querylens/engine"
)

// ============================================================================
// ECHARTS BUILDER — Produces HTML charts from transformed rows
// ============================================================================
// Consumes the engine's render-ready rows; all aggregation and formatting
// decisions were made upstream. A nil cell is passed through as a gap, never
// as zero.
// ============================================================================

// Option configures chart rendering via functional options.
type Option func(*config)

type config struct {
	Width  string
	Height string
}

// WithSize overrides the default canvas dimensions.
func WithSize(width, height string) Option {
	return func(c *config) {
		c.Width = width
		c.Height = height
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{Width: "100%", Height: "500px"}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// BuildChart turns transformed rows into a renderable go-echarts chart.
// KPI configs have no chart form here; use BuildKPI for those.
func BuildChart(title string, cfg engine.ChartConfig, rows []engine.TransformedRow, options ...Option) (components.Charter, error) {
	switch cfg.ChartType {
	case engine.ChartBar:
		return buildBar(title, cfg, rows, options...), nil
	case engine.ChartLine, engine.ChartArea:
		return buildLine(title, cfg, rows, options...), nil
	case engine.ChartPie:
		return buildPie(title, cfg, rows, options...), nil
	case engine.ChartKPI:
		return nil, fmt.Errorf("kpi tiles are not chart-rendered")
	default:
		return nil, fmt.Errorf("unsupported chart type %q", cfg.ChartType)
	}
}

// WriteHTML renders the chart as a standalone HTML document.
func WriteHTML(w io.Writer, chart components.Charter) error {
	page := components.NewPage()
	page.AddCharts(chart)
	return page.Render(w)
}

func buildBar(title string, cfg engine.ChartConfig, rows []engine.TransformedRow, options ...Option) *charts.Bar {
	c := applyOptions(options)
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(title, c)...)
	bar.SetXAxis(xLabels(rows))

	highlights := engine.HighlightValues(rows)
	for si, key := range primaryKeys(cfg, rows) {
		data := make([]opts.BarData, len(rows))
		for i, row := range rows {
			data[i] = opts.BarData{Value: row.Values[key]}
			if color := pointColor(row, highlights); color != "" {
				data[i].ItemStyle = &opts.ItemStyle{Color: color}
			}
		}
		bar.AddSeries(key, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: engine.SeriesColor(si)}))
	}
	attachSecondaryBar(bar, cfg, rows)
	return bar
}

func buildLine(title string, cfg engine.ChartConfig, rows []engine.TransformedRow, options ...Option) *charts.Line {
	c := applyOptions(options)
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(title, c)...)
	line.SetXAxis(xLabels(rows))

	for si, key := range primaryKeys(cfg, rows) {
		data := make([]opts.LineData, len(rows))
		for i, row := range rows {
			data[i] = opts.LineData{Value: row.Values[key]}
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: engine.SeriesColor(si)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: engine.SeriesColor(si)}),
		}
		if cfg.ChartType == engine.ChartArea {
			seriesOpts = append(seriesOpts,
				charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.35}))
		}
		line.AddSeries(key, data, seriesOpts...)
	}
	attachSecondaryLine(line, cfg, rows)
	return line
}

func buildPie(title string, cfg engine.ChartConfig, rows []engine.TransformedRow, options ...Option) *charts.Pie {
	c := applyOptions(options)
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: c.Width, Height: c.Height}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	keys := seriesKeys(rows)
	if len(keys) == 0 {
		return pie
	}
	// A pie shows one value series; the first emitted key wins.
	key := keys[0]
	data := make([]opts.PieData, 0, len(rows))
	for i, row := range rows {
		data = append(data, opts.PieData{
			Name:      dataset.ValueString(row.X),
			Value:     row.Values[key],
			ItemStyle: &opts.ItemStyle{Color: engine.SeriesColor(i)},
		})
	}
	pie.AddSeries(key, data)
	return pie
}

func globalOptions(title string, c *config) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: c.Width, Height: c.Height}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	}
}

// attachSecondaryBar adds the right-hand axis series when the config names
// a secondary Y column.
func attachSecondaryBar(bar *charts.Bar, cfg engine.ChartConfig, rows []engine.TransformedRow) {
	key, data := secondarySeries(cfg, rows)
	if key == "" {
		return
	}
	bar.ExtendYAxis(opts.YAxis{Type: "value", Name: key})
	lineData := make([]opts.LineData, len(data))
	for i, v := range data {
		lineData[i] = opts.LineData{Value: v}
	}
	line := charts.NewLine()
	line.SetXAxis(xLabels(rows))
	line.AddSeries(key, lineData,
		charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	bar.Overlap(line)
}

func attachSecondaryLine(line *charts.Line, cfg engine.ChartConfig, rows []engine.TransformedRow) {
	key, data := secondarySeries(cfg, rows)
	if key == "" {
		return
	}
	line.ExtendYAxis(opts.YAxis{Type: "value", Name: key})
	lineData := make([]opts.LineData, len(data))
	for i, v := range data {
		lineData[i] = opts.LineData{Value: v}
	}
	line.AddSeries(key, lineData,
		charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
}

func secondarySeries(cfg engine.ChartConfig, rows []engine.TransformedRow) (string, []dataset.Value) {
	if cfg.SecondaryYColumn == "" {
		return "", nil
	}
	data := make([]dataset.Value, len(rows))
	present := false
	for i, row := range rows {
		if v, ok := row.Values[cfg.SecondaryYColumn]; ok {
			data[i] = v
			present = true
		}
	}
	if !present {
		return "", nil
	}
	return cfg.SecondaryYColumn, data
}

// xLabels renders the X value of each row as an axis label.
func xLabels(rows []engine.TransformedRow) []string {
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = dataset.ValueString(row.X)
	}
	return labels
}

// seriesKeys collects every value key across rows in first-emission order.
func seriesKeys(rows []engine.TransformedRow) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, k := range row.Keys {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// primaryKeys is seriesKeys minus the secondary Y column, which is carried
// inside Values too but rendered against its own axis.
func primaryKeys(cfg engine.ChartConfig, rows []engine.TransformedRow) []string {
	keys := seriesKeys(rows)
	if cfg.SecondaryYColumn == "" {
		return keys
	}
	out := keys[:0]
	for _, k := range keys {
		if k != cfg.SecondaryYColumn {
			out = append(out, k)
		}
	}
	return out
}

// pointColor picks the highlight color for a row, or "" when the row's
// highlight value is not one of the chart's tracked values.
func pointColor(row engine.TransformedRow, highlights []dataset.Value) string {
	k := dataset.Key(row.Highlight)
	for _, candidate := range highlights {
		if dataset.Key(candidate) == k {
			return engine.HighlightColor(highlights, candidate)
		}
	}
	return ""
}
