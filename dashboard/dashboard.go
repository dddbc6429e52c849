package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/querylens-org/querylens/dataset"
	"github.com/querylens-org/querylens/engine"
	"github.com/querylens-org/querylens/state"
)

// ============================================================================
// DASHBOARD — chart collection and result delivery
// ============================================================================

// Chart is one tile on the dashboard: a title and the query that feeds it.
type Chart struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	SQL   string `json:"sql"`
}

// Store is the persistence surface a dashboard needs: chart configs plus
// the grid layout.
type Store interface {
	state.Store
	SaveLayout(ctx context.Context, dashboardID string, items []LayoutItem) error
	LoadLayout(ctx context.Context, dashboardID string) ([]LayoutItem, bool, error)
}

// Dashboard owns an ordered chart list, one configuration state machine per
// chart, the grid layout, and the stale-fetch guard.
type Dashboard struct {
	id    string
	store Store
	log   *zap.Logger
	guard *state.FetchGuard

	mu     sync.Mutex
	charts []Chart
	states map[string]*state.ChartState
	layout []LayoutItem
}

// New creates a dashboard, restoring any persisted layout.
func New(ctx context.Context, id string, store Store, log *zap.Logger) (*Dashboard, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dashboard{
		id:     id,
		store:  store,
		log:    log.With(zap.String("dashboard_id", id)),
		guard:  state.NewFetchGuard(),
		states: make(map[string]*state.ChartState),
	}
	if store != nil {
		items, found, err := store.LoadLayout(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load dashboard layout: %w", err)
		}
		if found {
			d.layout = items
		}
	}
	return d, nil
}

// AddChart mints a new chart, places it on the grid, and creates its state
// machine.
func (d *Dashboard) AddChart(ctx context.Context, title, sql string) (Chart, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := Chart{ID: uuid.NewString(), Title: title, SQL: sql}
	st, err := state.New(ctx, c.ID, d.store, d.log)
	if err != nil {
		return Chart{}, err
	}
	d.charts = append(d.charts, c)
	d.states[c.ID] = st

	if err := d.reconcileLayoutLocked(ctx); err != nil {
		return Chart{}, err
	}
	d.log.Info("added chart", zap.String("chart_id", c.ID), zap.String("title", title))
	return c, nil
}

// RemoveChart deletes a chart, its layout slot, and its persisted config.
func (d *Dashboard) RemoveChart(ctx context.Context, chartID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := -1
	for i, c := range d.charts {
		if c.ID == chartID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("unknown chart %s", chartID)
	}
	d.charts = append(d.charts[:idx], d.charts[idx+1:]...)
	delete(d.states, chartID)
	d.guard.Forget(chartID)

	if d.store != nil {
		if err := d.store.DeleteConfig(ctx, chartID); err != nil {
			return err
		}
	}
	return d.reconcileLayoutLocked(ctx)
}

// RenameChart updates a chart's title. Titles don't affect layout or config.
func (d *Dashboard) RenameChart(chartID, title string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.charts {
		if d.charts[i].ID == chartID {
			d.charts[i].Title = title
			return nil
		}
	}
	return fmt.Errorf("unknown chart %s", chartID)
}

// Charts returns the ordered chart list.
func (d *Dashboard) Charts() []Chart {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Chart(nil), d.charts...)
}

// Layout returns the current grid layout.
func (d *Dashboard) Layout() []LayoutItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]LayoutItem(nil), d.layout...)
}

// SetLayout replaces the layout with the user's arrangement and persists it.
func (d *Dashboard) SetLayout(ctx context.Context, items []LayoutItem) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.layout = append([]LayoutItem(nil), items...)
	return d.persistLayoutLocked(ctx)
}

// State returns the configuration state machine for a chart.
func (d *Dashboard) State(chartID string) (*state.ChartState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.states[chartID]
	return st, ok
}

// BeginFetch marks the start of a query run for the chart and returns the
// delivery token.
func (d *Dashboard) BeginFetch(chartID string) uint64 {
	return d.guard.Begin(chartID)
}

// DeliverResult hands a query result to the chart's state machine, unless a
// newer fetch has been started since the token was issued.
func (d *Dashboard) DeliverResult(ctx context.Context, chartID string, token uint64, ds *dataset.Dataset) (bool, error) {
	if !d.guard.Accept(chartID, token) {
		d.log.Debug("dropped stale result",
			zap.String("chart_id", chartID), zap.Uint64("token", token))
		return false, nil
	}
	st, ok := d.State(chartID)
	if !ok {
		return false, fmt.Errorf("unknown chart %s", chartID)
	}
	if err := st.ObserveDataset(ctx, ds); err != nil {
		return false, err
	}
	return true, nil
}

// ApplyConfig forwards a saved editor configuration to the chart's state
// machine.
func (d *Dashboard) ApplyConfig(ctx context.Context, chartID string, cfg engine.ChartConfig) error {
	st, ok := d.State(chartID)
	if !ok {
		return fmt.Errorf("unknown chart %s", chartID)
	}
	return st.ApplyConfig(ctx, cfg)
}

// reconcileLayoutLocked regenerates placements only when the chart-ID set
// differs from the layout, preserving manual rearrangement otherwise.
func (d *Dashboard) reconcileLayoutLocked(ctx context.Context) error {
	if sameIDSet(d.charts, d.layout) {
		return nil
	}
	d.layout = PlaceCharts(d.charts, d.layout)
	return d.persistLayoutLocked(ctx)
}

func (d *Dashboard) persistLayoutLocked(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	if err := d.store.SaveLayout(ctx, d.id, d.layout); err != nil {
		return fmt.Errorf("persist dashboard layout: %w", err)
	}
	return nil
}
