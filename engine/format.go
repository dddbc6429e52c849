package engine

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/querylens-org/querylens/dataset"
)

// ============================================================================
// NUMBER FORMATTER — display strings for table cells, tooltips, KPI tiles
// ============================================================================

var printer = message.NewPrinter(language.English)

// FormatNumber renders a numeric value with exactly decimalPlaces fractional
// digits (zero-padded) and optional thousands grouping. Values that cannot
// be coerced to a finite number come back unchanged in string form — never
// an error. Rounding is half away from zero.
func FormatNumber(v dataset.Value, decimalPlaces int, useThousandsSeparator bool) string {
	f, ok := dataset.AsNumber(v)
	if !ok {
		return dataset.ValueString(v)
	}
	if decimalPlaces < 0 {
		decimalPlaces = 0
	}
	scale := math.Pow(10, float64(decimalPlaces))
	rounded := math.Round(f*scale) / scale

	if !useThousandsSeparator {
		return strconv.FormatFloat(rounded, 'f', decimalPlaces, 64)
	}
	return printer.Sprintf("%v", number.Decimal(rounded,
		number.MinFractionDigits(decimalPlaces),
		number.MaxFractionDigits(decimalPlaces),
	))
}

// FormatValue formats a value with the config's formatting settings.
func (c ChartConfig) FormatValue(v dataset.Value) string {
	return FormatNumber(v, c.DecimalPlaces, c.UseThousandsSeparator)
}
