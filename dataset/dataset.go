package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// DATASET — Generic tabular data (schema captured once, rows immutable)
// ============================================================================
// A Dataset is an ordered sequence of homogeneous key→scalar rows, as
// delivered by a query-execution collaborator. The first row's keys define
// the schema; Columns preserves their source order so detection and
// transformation stay deterministic (Go maps do not).
// ============================================================================

// Value is a row scalar: float64, string, bool, or nil.
type Value = any

// Row is a single data row keyed by column name.
type Row map[string]Value

// Dataset is an immutable ordered row collection with a captured schema.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// New creates a Dataset with an explicit column order.
func New(columns []string, rows []Row) *Dataset {
	return &Dataset{Columns: columns, Rows: rows}
}

// FromRows creates a Dataset capturing the schema from the first row.
// Map iteration order is not stable, so columns are sorted for determinism;
// the ingest helpers preserve true source order and should be preferred.
func FromRows(rows []Row) *Dataset {
	d := &Dataset{Rows: rows}
	if len(rows) > 0 {
		for k := range rows[0] {
			d.Columns = append(d.Columns, k)
		}
		sort.Strings(d.Columns)
	}
	return d
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Empty reports whether the dataset has no rows.
func (d *Dataset) Empty() bool { return d.Len() == 0 }

// First returns the first row, or nil for an empty dataset.
func (d *Dataset) First() Row {
	if d.Len() == 0 {
		return nil
	}
	return d.Rows[0]
}

// HasColumn reports whether a column matches name case-insensitively,
// returning the actual column name.
func (d *Dataset) HasColumn(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	lower := strings.ToLower(name)
	for _, c := range d.Columns {
		if strings.ToLower(c) == lower {
			return c, true
		}
	}
	return "", false
}

// DistinctValues returns the distinct values of a column in first-seen order.
func (d *Dataset) DistinctValues(column string) []Value {
	seen := make(map[Value]bool)
	var out []Value
	for _, r := range d.Rows {
		v := r[column]
		k := Key(v)
		if !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	return out
}

// IsConstant reports whether every row holds the same value in a column.
func (d *Dataset) IsConstant(column string) bool {
	if d.Len() == 0 {
		return true
	}
	first := Key(d.Rows[0][column])
	for _, r := range d.Rows[1:] {
		if Key(r[column]) != first {
			return false
		}
	}
	return true
}

// ============================================================================
// NUMERIC COERCION
// ============================================================================

// AsNumber converts a value to a float64 under the strict rule used for
// classification and aggregation: the conversion must succeed and yield a
// finite result. Numeric-looking strings qualify; "Infinity", "NaN",
// booleans, and nil do not.
func AsNumber(v Value) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, finite(x)
	case float32:
		return float64(x), finite(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, finite(f)
	default:
		return 0, false
	}
}

// IsNumeric reports whether AsNumber would succeed.
func IsNumeric(v Value) bool {
	_, ok := AsNumber(v)
	return ok
}

// CoerceNumber converts a value with permissive rules: nil and empty strings
// become 0, booleans become 0 or 1, and anything unparseable becomes NaN.
// Used where raw values are stacked without a prior numeric filter, so that
// bad data degrades to NaN instead of erroring.
func CoerceNumber(v Value) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// ValueString renders a scalar the way it would appear as a label or key.
func ValueString(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Key returns a comparable form of a value for use as a map key or in
// equality checks. Scalars are used as-is; anything outside the scalar union
// falls back to its string rendering, so malformed upstream data can never
// panic the bucket maps.
func Key(v Value) Value {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int64:
		return v
	default:
		return ValueString(v)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
