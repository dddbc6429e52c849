package render

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/querylens-org/querylens/dataset"
	"github.com/querylens-org/querylens/engine"
)

// ============================================================================
// ASCII PREVIEW — terminal rendering of transformed rows
// ============================================================================

// AsciiOptions controls the terminal plot.
type AsciiOptions struct {
	Height int
	Width  int // 0 means auto
}

// DefaultAsciiOptions returns the standard terminal plot size.
func DefaultAsciiOptions() AsciiOptions {
	return AsciiOptions{Height: 10}
}

// AsciiPreview plots each numeric series of the transformed rows as a
// terminal line graph. Gaps (nil cells) are bridged by carrying the previous
// value, since the plotter has no notion of missing points.
func AsciiPreview(cfg engine.ChartConfig, rows []engine.TransformedRow, o AsciiOptions) string {
	keys := primaryKeys(cfg, rows)
	if len(rows) == 0 || len(keys) == 0 {
		return "(no data)"
	}

	series := make([][]float64, 0, len(keys))
	for _, key := range keys {
		points := make([]float64, 0, len(rows))
		last := 0.0
		for _, row := range rows {
			if n, ok := dataset.AsNumber(row.Values[key]); ok {
				last = n
			}
			points = append(points, last)
		}
		series = append(series, points)
	}

	plotOpts := []asciigraph.Option{
		asciigraph.Height(o.Height),
		asciigraph.Caption(caption(rows, keys)),
	}
	if o.Width > 0 {
		plotOpts = append(plotOpts, asciigraph.Width(o.Width))
	}
	return asciigraph.PlotMany(series, plotOpts...)
}

func caption(rows []engine.TransformedRow, keys []string) string {
	first := dataset.ValueString(rows[0].X)
	last := dataset.ValueString(rows[len(rows)-1].X)
	return fmt.Sprintf("%s  [%s .. %s]", strings.Join(keys, ", "), first, last)
}
