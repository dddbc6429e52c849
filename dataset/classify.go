package dataset

import (
	"time"
)

// ============================================================================
// COLUMN CLASSIFIER — numeric / date / categorical
// ============================================================================
// Classification inspects a single representative row (the first). A value
// is numeric iff it parses to a finite float; a date iff it is a string
// strictly matching one of the fixed layouts below; categorical otherwise.
// ============================================================================

// Kind classifies a column's content.
type Kind int

const (
	KindCategorical Kind = iota
	KindNumeric
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "categorical"
	}
}

// Ordered list of accepted date layouts. Matching is strict: the whole
// string must conform to one layout, lenient coercion does not count.
// Go layouts accept one- and two-digit day/month, which covers the
// D/M permutations.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"Jan 2, 2006",
}

// displayDateLayout is the human-readable form emitted for x-axis values.
const displayDateLayout = "2 Jan 2006"

// ParseDate strictly parses a string against the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsDate reports whether a value is a string strictly matching a date layout.
func IsDate(v Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = ParseDate(s)
	return ok
}

// FormatDateValue reformats date-like strings to "2 Jan 2006" form.
// Anything that is not a strictly matching date string passes through
// unchanged.
func FormatDateValue(v Value) Value {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t, ok := ParseDate(s)
	if !ok {
		return v
	}
	return t.Format(displayDateLayout)
}

// Classify maps each column of a row to its Kind. Date wins over numeric
// for date-like strings since date layouts never parse as floats.
func Classify(row Row) map[string]Kind {
	kinds := make(map[string]Kind, len(row))
	for col, v := range row {
		kinds[col] = classifyValue(v)
	}
	return kinds
}

// ClassifyDataset classifies using the dataset's first row. Empty datasets
// yield an empty mapping.
func ClassifyDataset(d *Dataset) map[string]Kind {
	if d.Empty() {
		return map[string]Kind{}
	}
	return Classify(d.First())
}

func classifyValue(v Value) Kind {
	if IsDate(v) {
		return KindDate
	}
	if IsNumeric(v) {
		return KindNumeric
	}
	return KindCategorical
}
