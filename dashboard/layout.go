package dashboard

// ============================================================================
// GRID LAYOUT — deterministic tile placement
// ============================================================================
// Charts live on a 12-column grid. New charts are appended full-width below
// the bottom edge of whatever is already placed; existing positions are
// never touched, so manual rearrangement survives chart additions.
// ============================================================================

// Default dimensions for a newly placed chart tile.
const (
	DefaultW = 12 // full grid width
	DefaultH = 1  // one grid unit high
	GridCols = 12
)

// LayoutItem is one chart tile's position and size on the grid.
type LayoutItem struct {
	ChartID string `json:"i"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	W       int    `json:"w"`
	H       int    `json:"h"`
	MinW    int    `json:"minW"`
	MinH    int    `json:"minH"`
}

// MaxY returns the bottom-most occupied edge of the grid.
func MaxY(items []LayoutItem) int {
	maxY := 0
	for _, item := range items {
		if bottom := item.Y + item.H; bottom > maxY {
			maxY = bottom
		}
	}
	return maxY
}

// PlaceCharts reconciles the layout with the chart list. Charts already
// positioned keep their slot; charts without one are appended below the
// current bottom edge, each on its own row; items whose chart no longer
// exists are dropped.
func PlaceCharts(charts []Chart, current []LayoutItem) []LayoutItem {
	known := make(map[string]bool, len(charts))
	for _, c := range charts {
		known[c.ID] = true
	}

	layout := make([]LayoutItem, 0, len(charts))
	positioned := make(map[string]bool, len(current))
	for _, item := range current {
		if known[item.ChartID] {
			layout = append(layout, item)
			positioned[item.ChartID] = true
		}
	}

	nextY := MaxY(layout)
	for _, c := range charts {
		if positioned[c.ID] {
			continue
		}
		layout = append(layout, LayoutItem{
			ChartID: c.ID,
			X:       0,
			Y:       nextY,
			W:       DefaultW,
			H:       DefaultH,
			MinW:    DefaultW,
			MinH:    DefaultH,
		})
		nextY += DefaultH
	}
	return layout
}

// sameIDSet reports whether the layout already covers exactly the chart set.
func sameIDSet(charts []Chart, items []LayoutItem) bool {
	if len(charts) != len(items) {
		return false
	}
	ids := make(map[string]bool, len(items))
	for _, item := range items {
		ids[item.ChartID] = true
	}
	for _, c := range charts {
		if !ids[c.ID] {
			return false
		}
	}
	return true
}
