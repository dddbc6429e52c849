package engine

import (
	"github.com/querylens-org/querylens/dataset"
)

// ============================================================================
// ENGINE TYPES — Chart configuration and render-ready rows
// ============================================================================
// ChartConfig is the persisted, user-editable description of how one
// dataset renders as one chart. TransformedRow is what the chart-drawing
// collaborator consumes. The engine knows nothing about pixels or SVG.
// ============================================================================

// ChartType selects the visual form of a chart tile.
type ChartType string

const (
	ChartUnset ChartType = ""
	ChartBar   ChartType = "bar"
	ChartLine  ChartType = "line"
	ChartArea  ChartType = "area"
	ChartPie   ChartType = "pie"
	ChartKPI   ChartType = "kpi"
)

// Aggregation selects how grouped values are reduced.
type Aggregation string

const (
	AggNone    Aggregation = "none"
	AggSum     Aggregation = "sum"
	AggAverage Aggregation = "average"
	AggMedian  Aggregation = "median"
	AggCount   Aggregation = "count"
)

// IsNone treats the empty string as "none" so configs loaded from older
// blobs behave the same as fresh ones.
func (a Aggregation) IsNone() bool { return a == AggNone || a == "" }

// ChartConfig describes how to render one dataset as one chart.
// It round-trips through JSON unchanged — the storage layer treats it as an
// opaque blob keyed by chart identifier.
type ChartConfig struct {
	ChartType             ChartType     `json:"chartType"`
	XColumn               string        `json:"xColumn"`
	YColumns              []string      `json:"yColumns"`
	SecondaryYColumn      string        `json:"secondaryYColumn,omitempty"`
	Aggregation           Aggregation   `json:"aggregation"`
	GroupBy               string        `json:"groupBy,omitempty"`
	SeriesColumn          string        `json:"seriesColumn,omitempty"`
	DecimalPlaces         int           `json:"decimalPlaces"`
	UseThousandsSeparator bool          `json:"useThousandsSeparator"`
	HighlightCategory     string        `json:"highlightCategory,omitempty"`
	HighlightValue        dataset.Value `json:"highlightValue,omitempty"`
}

// DefaultConfig returns the initial configuration of a fresh chart.
func DefaultConfig() ChartConfig {
	return ChartConfig{
		Aggregation:           AggNone,
		DecimalPlaces:         2,
		UseThousandsSeparator: true,
	}
}

// IsDefault reports whether the config is still entirely at its
// empty/default values — the gate for the one-time auto-detect merge.
func (c ChartConfig) IsDefault() bool {
	return c.XColumn == "" &&
		len(c.YColumns) == 0 &&
		c.ChartType == ChartUnset &&
		c.Aggregation.IsNone() &&
		c.GroupBy == "" &&
		c.SeriesColumn == ""
}

// ShapeEquals reports whether two configs would produce the same
// transformed-row shape. Formatting and highlight fields only affect
// display strings, not row shape.
func (c ChartConfig) ShapeEquals(o ChartConfig) bool {
	if c.ChartType != o.ChartType ||
		c.XColumn != o.XColumn ||
		c.Aggregation != o.Aggregation ||
		c.GroupBy != o.GroupBy ||
		c.SeriesColumn != o.SeriesColumn ||
		c.SecondaryYColumn != o.SecondaryYColumn {
		return false
	}
	if len(c.YColumns) != len(o.YColumns) {
		return false
	}
	for i := range c.YColumns {
		if c.YColumns[i] != o.YColumns[i] {
			return false
		}
	}
	return true
}

// Normalize fills the formatting defaults an editor may omit, mirroring the
// full-replacement apply path.
func (c ChartConfig) Normalize() ChartConfig {
	if c.Aggregation == "" {
		c.Aggregation = AggNone
	}
	if c.DecimalPlaces < 0 {
		c.DecimalPlaces = 0
	}
	return c
}

// ProposedConfig is the ConfigAutoDetector's output: one default per
// configurable field, merged into still-empty config fields only.
type ProposedConfig struct {
	DefaultX                 string
	DefaultY                 string
	DefaultSecondaryY        string
	DefaultChartType         ChartType
	DefaultAggregation       Aggregation
	DefaultGroupBy           string
	DefaultHighlightCategory string
	DefaultHighlightValue    dataset.Value
}

// MergeDefaults folds auto-detected defaults into a config, touching only
// fields still at their empty value. Explicit user values are never
// overwritten, even when equal to a previously detected default.
func (c ChartConfig) MergeDefaults(p ProposedConfig) ChartConfig {
	next := c
	if next.XColumn == "" {
		next.XColumn = p.DefaultX
	}
	if len(next.YColumns) == 0 && p.DefaultY != "" {
		next.YColumns = []string{p.DefaultY}
	}
	if next.SecondaryYColumn == "" && p.DefaultSecondaryY != "" {
		next.SecondaryYColumn = p.DefaultSecondaryY
	}
	if next.ChartType == ChartUnset {
		next.ChartType = p.DefaultChartType
	}
	if next.Aggregation.IsNone() && !p.DefaultAggregation.IsNone() {
		next.Aggregation = p.DefaultAggregation
	}
	if next.GroupBy == "" && p.DefaultGroupBy != "" {
		next.GroupBy = p.DefaultGroupBy
	}
	if next.HighlightCategory == "" && p.DefaultHighlightCategory != "" {
		next.HighlightCategory = p.DefaultHighlightCategory
	}
	if isEmptyValue(next.HighlightValue) && !isEmptyValue(p.DefaultHighlightValue) {
		next.HighlightValue = p.DefaultHighlightValue
	}
	return next
}

// TransformedRow is one render-ready row. Keys preserves emission order so
// legends and series stay stable; a nil value in Values is a gap, not zero.
type TransformedRow struct {
	X         dataset.Value            `json:"x"`
	Keys      []string                 `json:"-"`
	Values    map[string]dataset.Value `json:"values"`
	Highlight dataset.Value            `json:"highlightValue,omitempty"`
}

func newTransformedRow(x dataset.Value) TransformedRow {
	return TransformedRow{X: x, Values: make(map[string]dataset.Value)}
}

func (r *TransformedRow) set(key string, v dataset.Value) {
	if _, exists := r.Values[key]; !exists {
		r.Keys = append(r.Keys, key)
	}
	r.Values[key] = v
}

func isEmptyValue(v dataset.Value) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
