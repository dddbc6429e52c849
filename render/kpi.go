package render

import (
	"github.com/querylens-org/querylens/dataset"
	"github.com/querylens-org/querylens/engine"
)

// ============================================================================
// KPI BUILDER — Produces stat cards from KPI-transformed rows
// ============================================================================

// KPICard is one headline number with its column label.
type KPICard struct {
	Label    string        `json:"label"`
	Value    string        `json:"value"`
	RawValue dataset.Value `json:"rawValue"`
}

// BuildKPI renders KPI rows as stat cards, one card per emitted key per row.
// Numeric values get the chart's number formatting; everything else is shown
// verbatim.
func BuildKPI(cfg engine.ChartConfig, rows []engine.TransformedRow) []KPICard {
	var cards []KPICard
	for _, row := range rows {
		for _, key := range row.Keys {
			v := row.Values[key]
			card := KPICard{Label: key, RawValue: v}
			if dataset.IsNumeric(v) {
				card.Value = cfg.FormatValue(v)
			} else {
				card.Value = dataset.ValueString(v)
			}
			cards = append(cards, card)
		}
	}
	return cards
}
