package engine

import (
	"math"
	"slices"

	"github.com/querylens-org/querylens/dataset"
)

// ============================================================================
// AGGREGATION — sum / average / median / count over row subsets
// ============================================================================

// numericSubset collects the strictly numeric values of a column across rows.
func numericSubset(rows []dataset.Row, key string) []float64 {
	nums := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := dataset.AsNumber(r[key]); ok {
			nums = append(nums, f)
		}
	}
	return nums
}

// coerceCell applies permissive coercion to a cell, distinguishing an absent
// column (NaN) from a present null (0).
func coerceCell(r dataset.Row, key string) float64 {
	v, ok := r[key]
	if !ok {
		return math.NaN()
	}
	return dataset.CoerceNumber(v)
}

func sumOf(nums []float64) float64 {
	var total float64
	for _, n := range nums {
		total += n
	}
	return total
}

// median returns the sorted midpoint, averaging the two middle values on an
// even count. An empty input yields NaN.
func median(nums []float64) float64 {
	if len(nums) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(nums))
	copy(sorted, nums)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// reduce collapses a value list under an aggregation. Unspecified and "none"
// aggregations behave as sum.
func reduce(vals []float64, agg Aggregation) float64 {
	switch agg {
	case AggAverage:
		return sumOf(vals) / float64(len(vals))
	case AggMedian:
		return median(vals)
	case AggCount:
		return float64(len(vals))
	default:
		return sumOf(vals)
	}
}
